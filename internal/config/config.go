// Package config centralizes how SheetDrop reads environment variables and
// exposes them as strongly typed Go values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend names accepted by SHEETDROP_SHEET_BACKEND and
// SHEETDROP_STORAGE_BACKEND.
const (
	SheetBackendGoogle   = "sheets"
	SheetBackendWorkbook = "workbook"
	StorageBackendS3     = "s3"
	StorageBackendDrive  = "drive"
	StorageBackendNone   = "none"
)

// Config represents runtime configuration for the service.
type Config struct {
	Address           string
	MaxAttachmentSize int64
	// MaxRequestSize caps the whole multipart request body; unset, it is
	// derived as four max-size attachments plus form-field headroom.
	MaxRequestSize int64
	AllowedTypes   []string

	// Header is the comma-separated column list; empty means the default
	// eight-column layout.
	Header string

	SheetBackend  string
	SpreadsheetID string
	SheetName     string
	WorkbookPath  string

	StorageBackend string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3UseSSL       bool
	DriveFolderID  string

	// GoogleCredentials is the service-account key JSON, taken inline from
	// SHEETDROP_GOOGLE_CREDENTIALS or read from the path in
	// SHEETDROP_GOOGLE_CREDENTIALS_FILE.
	GoogleCredentials []byte

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	NotifyTo        string
	NotifySubject   string
	TriggerCategory string

	LinkDelimiter string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Workers       int
}

const (
	defaultAddress        = ":8080"
	defaultMaxAttachment  = 25 << 20 // 25 MiB
	defaultAllowedTypes   = "image/png,image/jpeg,application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheetName      = "Sheet1"
	defaultWorkbookPath   = "sheetdrop.xlsx"
	defaultNotifySubject  = "New warehouse data feedback"
	defaultLinkDelimiter  = ", "
	defaultSMTPPort       = 587
	defaultWorkerCount    = 2
	defaultStorageBackend = StorageBackendS3
	defaultSheetBackend   = SheetBackendWorkbook
)

// Load reads configuration from environment variables falling back to
// defaults. Backend-specific required values are checked by the callers that
// actually construct those backends, so a CLI run against the workbook
// backend does not demand Google or S3 credentials.
func Load() (*Config, error) {
	creds, err := googleCredentials()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Address:           readEnv("SHEETDROP_ADDRESS", defaultAddress),
		MaxAttachmentSize: parseInt64("SHEETDROP_MAX_ATTACHMENT_BYTES", defaultMaxAttachment),
		MaxRequestSize:    parseInt64("SHEETDROP_MAX_REQUEST_BYTES", 0),
		AllowedTypes:      parseList("SHEETDROP_ALLOWED_TYPES", defaultAllowedTypes),
		Header:            readEnv("SHEETDROP_HEADER", ""),
		SheetBackend:      readEnv("SHEETDROP_SHEET_BACKEND", defaultSheetBackend),
		SpreadsheetID:     readEnv("SHEETDROP_SPREADSHEET_ID", ""),
		SheetName:         readEnv("SHEETDROP_SHEET_NAME", defaultSheetName),
		WorkbookPath:      readEnv("SHEETDROP_WORKBOOK_PATH", defaultWorkbookPath),
		StorageBackend:    readEnv("SHEETDROP_STORAGE_BACKEND", defaultStorageBackend),
		S3Endpoint:        readEnv("SHEETDROP_S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:       readEnv("SHEETDROP_S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:       readEnv("SHEETDROP_S3_SECRET_KEY", "minioadmin"),
		S3Bucket:          readEnv("SHEETDROP_S3_BUCKET", "sheetdrop-attachments"),
		S3Region:          readEnv("SHEETDROP_S3_REGION", "us-east-1"),
		S3UseSSL:          parseBool("SHEETDROP_S3_USE_SSL", false),
		DriveFolderID:     readEnv("SHEETDROP_DRIVE_FOLDER_ID", ""),
		GoogleCredentials: creds,
		SMTPHost:          readEnv("SHEETDROP_SMTP_HOST", ""),
		SMTPPort:          parseInt("SHEETDROP_SMTP_PORT", defaultSMTPPort),
		SMTPUsername:      readEnv("SHEETDROP_SMTP_USERNAME", ""),
		SMTPPassword:      readEnv("SHEETDROP_SMTP_PASSWORD", ""),
		SMTPFrom:          readEnv("SHEETDROP_SMTP_FROM", ""),
		NotifyTo:          readEnv("SHEETDROP_NOTIFY_TO", ""),
		NotifySubject:     readEnv("SHEETDROP_NOTIFY_SUBJECT", defaultNotifySubject),
		TriggerCategory:   readEnv("SHEETDROP_TRIGGER_CATEGORY", ""),
		LinkDelimiter:     readEnv("SHEETDROP_LINK_DELIMITER", defaultLinkDelimiter),
		DatabaseURL:       readEnv("SHEETDROP_DATABASE_URL", ""),
		RedisAddr:         readEnv("SHEETDROP_REDIS_ADDR", ""),
		RedisPassword:     readEnv("SHEETDROP_REDIS_PASSWORD", ""),
		RedisDB:           parseInt("SHEETDROP_REDIS_DB", 0),
		Workers:           parseInt("SHEETDROP_WORKERS", defaultWorkerCount),
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.MaxAttachmentSize <= 0 {
		cfg.MaxAttachmentSize = defaultMaxAttachment
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = cfg.MaxAttachmentSize*4 + 1<<20
	}
	return cfg, nil
}

// NotifierConfigured reports whether enough SMTP settings are present to
// construct the notifier.
func (c *Config) NotifierConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && c.NotifyTo != ""
}

func googleCredentials() ([]byte, error) {
	if v, ok := os.LookupEnv("SHEETDROP_GOOGLE_CREDENTIALS"); ok && v != "" {
		return []byte(v), nil
	}
	if path, ok := os.LookupEnv("SHEETDROP_GOOGLE_CREDENTIALS_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read google credentials file: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseList(key, def string) []string {
	val := readEnv(key, def)
	out := strings.Split(val, ",")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
