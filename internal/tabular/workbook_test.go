package tabular

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWorkbookReadHeaderMissingFile(t *testing.T) {
	w := NewWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), "Sheet1")
	cells, err := w.ReadHeader(context.Background(), 8)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if cells != nil {
		t.Fatalf("missing file should read as an absent header, got %v", cells)
	}
}

func TestWorkbookHeaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.xlsx")
	w := NewWorkbook(path, "Feedback")
	header := []string{"POC", "Team", "Feedback"}

	if err := w.WriteHeader(context.Background(), header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	cells, err := w.ReadHeader(context.Background(), len(header))
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if strings.Join(cells, "|") != strings.Join(header, "|") {
		t.Fatalf("header %v, want %v", cells, header)
	}
}

func TestWorkbookReadHeaderConfinedToWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.xlsx")
	w := NewWorkbook(path, "Feedback")

	if err := w.WriteHeader(context.Background(), []string{"POC", "Team", "Feedback", "Stale Extra"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	cells, err := w.ReadHeader(context.Background(), 3)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if strings.Join(cells, "|") != "POC|Team|Feedback" {
		t.Fatalf("read past the header region: %v", cells)
	}
}

func TestWorkbookAppendNeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.xlsx")
	w := NewWorkbook(path, "Feedback")

	if err := w.WriteHeader(context.Background(), []string{"POC", "Feedback"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.Append(context.Background(), []string{"Alice", "too slow"}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := w.Append(context.Background(), []string{"Bob", "broken link"}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Feedback")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(rows))
	}
	if rows[1][0] != "Alice" || rows[2][0] != "Bob" {
		t.Fatalf("rows out of order: %v", rows)
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 8: "H", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Fatalf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}
