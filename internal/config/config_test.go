package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != defaultAddress {
		t.Fatalf("address = %q", cfg.Address)
	}
	if cfg.SheetBackend != SheetBackendWorkbook {
		t.Fatalf("sheet backend = %q", cfg.SheetBackend)
	}
	if cfg.LinkDelimiter != ", " {
		t.Fatalf("link delimiter = %q", cfg.LinkDelimiter)
	}
	if cfg.MaxAttachmentSize != defaultMaxAttachment {
		t.Fatalf("max attachment = %d", cfg.MaxAttachmentSize)
	}
	if cfg.MaxRequestSize != defaultMaxAttachment*4+1<<20 {
		t.Fatalf("max request = %d", cfg.MaxRequestSize)
	}
}

func TestLoadRequestSizeOverride(t *testing.T) {
	t.Setenv("SHEETDROP_MAX_REQUEST_BYTES", "1048576")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxRequestSize != 1<<20 {
		t.Fatalf("max request = %d", cfg.MaxRequestSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHEETDROP_SHEET_BACKEND", SheetBackendGoogle)
	t.Setenv("SHEETDROP_SPREADSHEET_ID", "abc123")
	t.Setenv("SHEETDROP_ALLOWED_TYPES", "image/png , application/pdf")
	t.Setenv("SHEETDROP_SMTP_PORT", "2525")
	t.Setenv("SHEETDROP_S3_USE_SSL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SheetBackend != SheetBackendGoogle || cfg.SpreadsheetID != "abc123" {
		t.Fatalf("sheet settings not applied: %+v", cfg)
	}
	if len(cfg.AllowedTypes) != 2 || cfg.AllowedTypes[0] != "image/png" || cfg.AllowedTypes[1] != "application/pdf" {
		t.Fatalf("allowed types not trimmed: %v", cfg.AllowedTypes)
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("smtp port = %d", cfg.SMTPPort)
	}
	if !cfg.S3UseSSL {
		t.Fatalf("s3 ssl not enabled")
	}
}

func TestGoogleCredentialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials file: %v", err)
	}
	t.Setenv("SHEETDROP_GOOGLE_CREDENTIALS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.GoogleCredentials) != `{"type":"service_account"}` {
		t.Fatalf("credentials not read from file")
	}
}

func TestNotifierConfigured(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp.example.com", SMTPFrom: "noreply@example.com", NotifyTo: "partners@example.com"}
	if !cfg.NotifierConfigured() {
		t.Fatalf("expected notifier to be configured")
	}
	cfg.NotifyTo = ""
	if cfg.NotifierConfigured() {
		t.Fatalf("missing recipient should disable the notifier")
	}
}
