package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sheetdrop/sheetdrop/internal/config"
)

func TestParseDraft(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"poc":       "Alice",
		"team":      "Growth",
		"date":      "2026-08-28",
		"product":   "Warehouse data",
		"feedback":  "Stock counts drift",
		"warehouse": "WH-12",
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	fw, err := mw.CreateFormFile("attachments", "shot.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("not really a png")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	srv := &Server{cfg: &config.Config{MaxAttachmentSize: 1 << 20}}
	draft, err := srv.parseDraft(req)
	if err != nil {
		t.Fatalf("parse draft: %v", err)
	}
	if draft.POC != "Alice" || draft.Feedback != "Stock counts drift" {
		t.Fatalf("fields not mapped: %+v", draft)
	}
	if draft.Warehouse != "WH-12" {
		t.Fatalf("warehouse not mapped: %q", draft.Warehouse)
	}
	if draft.Date.Format("2006-01-02") != "2026-08-28" {
		t.Fatalf("date not parsed: %v", draft.Date)
	}
	if len(draft.Attachments) != 1 || draft.Attachments[0].Filename != "shot.png" {
		t.Fatalf("attachment not captured: %+v", draft.Attachments)
	}
	if string(draft.Attachments[0].Data) != "not really a png" {
		t.Fatalf("attachment bytes mismatch")
	}
}

func TestParseDraftRejectsBadDate(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("poc", "Alice")
	_ = mw.WriteField("feedback", "x")
	_ = mw.WriteField("date", "28/08/2026")
	mw.Close()

	req := httptest.NewRequest("POST", "/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	srv := &Server{cfg: &config.Config{MaxAttachmentSize: 1 << 20}}
	if _, err := srv.parseDraft(req); err == nil {
		t.Fatalf("expected a date format error")
	}
}

func TestParseDraftRejectsOversizedAttachment(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("poc", "Alice")
	_ = mw.WriteField("feedback", "x")
	fw, err := mw.CreateFormFile("attachments", "big.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte{0xAB}, 2048)); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	srv := &Server{cfg: &config.Config{MaxAttachmentSize: 1024}}
	if _, err := srv.parseDraft(req); err == nil {
		t.Fatalf("expected a size limit error")
	}
}

func TestParseDraftReportsRequestCap(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("poc", "Alice")
	_ = mw.WriteField("feedback", "x")
	fw, err := mw.CreateFormFile("attachments", "big.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte{0xAB}, 4096)); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 512)

	srv := &Server{cfg: &config.Config{MaxAttachmentSize: 1 << 20, MaxRequestSize: 512}}
	if _, err := srv.parseDraft(req); !errors.Is(err, errRequestTooLarge) {
		t.Fatalf("expected the request cap error, got %v", err)
	}
}

func TestAttachmentRouteWithoutArchive(t *testing.T) {
	srv := &Server{cfg: &config.Config{}}

	rr := httptest.NewRecorder()
	srv.handleAttachmentRoute(rr, httptest.NewRequest("GET", "/attachments/abc123", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("no archive should answer 503, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.handleAttachmentRoute(rr, httptest.NewRequest("GET", "/attachments/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing id should answer 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.handleAttachmentRoute(rr, httptest.NewRequest("DELETE", "/attachments/abc123", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("only GET is served, got %d", rr.Code)
	}
}
