// Package setup turns a Config into a wired pipeline. Both the server and
// the CLI construct their pipeline here so backend selection lives in one
// place.
package setup

import (
	"context"
	"fmt"
	"log"

	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/drive"
	"github.com/sheetdrop/sheetdrop/internal/notify"
	"github.com/sheetdrop/sheetdrop/internal/pipeline"
	"github.com/sheetdrop/sheetdrop/internal/s3storage"
	"github.com/sheetdrop/sheetdrop/internal/sheet"
	"github.com/sheetdrop/sheetdrop/internal/tabular"
)

// BuildPipeline constructs the tabular store, attachment store, and notifier
// selected by the Config and wires them into a Pipeline. The S3 bucket is
// ensured here so the first submission does not pay for it.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	header := sheet.DefaultHeader
	if cfg.Header != "" {
		parsed, err := sheet.ParseHeaderSpec(cfg.Header)
		if err != nil {
			return nil, err
		}
		header = parsed
	}
	builder, err := sheet.NewRowBuilder(header)
	if err != nil {
		return nil, err
	}

	store, err := BuildTabular(ctx, cfg)
	if err != nil {
		return nil, err
	}

	attachments, err := buildAttachmentStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var notifier pipeline.Notifier
	if cfg.NotifierConfigured() {
		smtp, err := notify.NewSMTP(cfg)
		if err != nil {
			return nil, err
		}
		notifier = smtp
	} else if cfg.TriggerCategory != "" {
		log.Printf("trigger category %q set but SMTP is not configured; notifications disabled", cfg.TriggerCategory)
	}

	return pipeline.New(pipeline.Options{
		Guard:           sheet.NewGuard(store, header),
		Sink:            sheet.NewSink(store, header),
		Builder:         builder,
		Store:           attachments,
		Notifier:        notifier,
		TriggerCategory: cfg.TriggerCategory,
		Recipient:       cfg.NotifyTo,
		Delimiter:       cfg.LinkDelimiter,
		AllowedTypes:    cfg.AllowedTypes,
	})
}

// BuildTabular selects the tabular-store backend. It is exported for the
// CLI's header command, which runs the guard without a full pipeline.
func BuildTabular(ctx context.Context, cfg *config.Config) (tabular.Store, error) {
	switch cfg.SheetBackend {
	case config.SheetBackendGoogle:
		if cfg.SpreadsheetID == "" {
			return nil, fmt.Errorf("sheets backend requires SHEETDROP_SPREADSHEET_ID")
		}
		if len(cfg.GoogleCredentials) == 0 {
			return nil, fmt.Errorf("sheets backend requires google credentials")
		}
		return tabular.NewSheetsStore(ctx, cfg.GoogleCredentials, cfg.SpreadsheetID, cfg.SheetName)
	case config.SheetBackendWorkbook:
		return tabular.NewWorkbook(cfg.WorkbookPath, cfg.SheetName), nil
	default:
		return nil, fmt.Errorf("unknown sheet backend %q", cfg.SheetBackend)
	}
}

func buildAttachmentStore(ctx context.Context, cfg *config.Config) (pipeline.AttachmentStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		store, err := s3storage.New(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageBackendDrive:
		if cfg.DriveFolderID == "" {
			return nil, fmt.Errorf("drive backend requires SHEETDROP_DRIVE_FOLDER_ID")
		}
		if len(cfg.GoogleCredentials) == 0 {
			return nil, fmt.Errorf("drive backend requires google credentials")
		}
		return drive.New(ctx, cfg.GoogleCredentials, cfg.DriveFolderID)
	case config.StorageBackendNone:
		// Attachments are skipped with a warning; the sheet still gets rows.
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
