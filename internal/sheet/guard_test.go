package sheet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sheetdrop/sheetdrop/internal/tabular"
)

type memStore struct {
	header  []string
	reads   int
	writes  int
	readErr error
}

func (m *memStore) ReadHeader(_ context.Context, _ int) ([]string, error) {
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.header, nil
}

func (m *memStore) WriteHeader(_ context.Context, cells []string) error {
	m.writes++
	m.header = append([]string(nil), cells...)
	return nil
}

func (m *memStore) Append(_ context.Context, _ []string) error { return nil }

func TestEnsureWritesAbsentHeader(t *testing.T) {
	store := &memStore{}
	guard := NewGuard(store, DefaultHeader)

	rewritten, err := guard.Ensure(context.Background())
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !rewritten {
		t.Fatalf("expected the absent header to be written")
	}
	if !DefaultHeader.Equal(store.header) {
		t.Fatalf("stored header %v does not match spec", store.header)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	store := &memStore{}
	guard := NewGuard(store, DefaultHeader)

	if _, err := guard.Ensure(context.Background()); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	rewritten, err := guard.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if rewritten {
		t.Fatalf("second ensure must be a no-op")
	}
	if store.writes != 1 {
		t.Fatalf("expected exactly one write, got %d", store.writes)
	}
	if store.reads != 2 {
		t.Fatalf("every ensure should re-read the header, got %d reads", store.reads)
	}
}

func TestEnsureRepairsDriftedHeader(t *testing.T) {
	store := &memStore{header: []string{"POC", "Squad", "Date"}}
	guard := NewGuard(store, DefaultHeader)

	rewritten, err := guard.Ensure(context.Background())
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !rewritten {
		t.Fatalf("drifted header should be rewritten")
	}
	if !DefaultHeader.Equal(store.header) {
		t.Fatalf("header not repaired: %v", store.header)
	}
}

func TestEnsureConvergesOverStaleWiderRow(t *testing.T) {
	store := tabular.NewWorkbook(filepath.Join(t.TempDir(), "feedback.xlsx"), "Sheet1")
	if err := store.WriteHeader(context.Background(), []string{"POC", "Squad", "Feedback", "Stale Extra"}); err != nil {
		t.Fatalf("seed header: %v", err)
	}
	guard := NewGuard(store, HeaderSpec{"POC", "Team", "Feedback"})

	rewritten, err := guard.Ensure(context.Background())
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if !rewritten {
		t.Fatalf("drifted header should be rewritten")
	}
	rewritten, err = guard.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if rewritten {
		t.Fatalf("second ensure must be a no-op even with stale cells beyond the header region")
	}
}

func TestEnsurePropagatesReadError(t *testing.T) {
	readErr := errors.New("offline")
	store := &memStore{readErr: readErr}
	guard := NewGuard(store, DefaultHeader)

	if _, err := guard.Ensure(context.Background()); !errors.Is(err, readErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if store.writes != 0 {
		t.Fatalf("must not write after a failed read")
	}
}

func TestSinkRejectsMisalignedRow(t *testing.T) {
	store := &memStore{}
	sink := NewSink(store, DefaultHeader)

	if err := sink.Append(context.Background(), []string{"just", "three", "cells"}); err == nil {
		t.Fatalf("expected width mismatch error")
	}
}
