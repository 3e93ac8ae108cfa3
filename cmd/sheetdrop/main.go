package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/model"
	"github.com/sheetdrop/sheetdrop/internal/setup"
	"github.com/sheetdrop/sheetdrop/internal/sheet"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sheetdrop: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheetdrop",
		Short: "Submit feedback to the configured sheet from the terminal",
		Long: `sheetdrop drives the same submission pipeline as the HTTP server against the
backends selected by the SHEETDROP_* environment variables: validate the draft,
ensure the sheet header, upload attachments, notify the partner mailbox for the
trigger category, and append the row.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newSubmitCmd(),
		newHeaderCmd(),
	)
	return cmd
}

func newSubmitCmd() *cobra.Command {
	var (
		poc         string
		team        string
		date        string
		product     string
		feedback    string
		description string
		impact      string
		warehouse   string
		attach      []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Run one submission through the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pipe, err := setup.BuildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			draft := model.Draft{
				POC:         poc,
				Team:        team,
				Product:     product,
				Feedback:    feedback,
				Description: description,
				Impact:      impact,
				Warehouse:   warehouse,
			}
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD")
				}
				draft.Date = d
			}
			for _, path := range attach {
				att, err := readAttachment(path)
				if err != nil {
					return err
				}
				draft.Attachments = append(draft.Attachments, att)
			}

			result := pipe.Submit(ctx, draft)
			printResult(cmd, result)
			if result.Outcome != model.OutcomeSuccess {
				return fmt.Errorf("submission %s", result.Outcome)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&poc, "poc", "", "Point of contact (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team name")
	cmd.Flags().StringVar(&date, "date", "", "Submission date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&product, "product", "", "Product or category")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Feedback summary (required)")
	cmd.Flags().StringVar(&description, "description", "", "Longer description")
	cmd.Flags().StringVar(&impact, "impact", "", "Reason or impact")
	cmd.Flags().StringVar(&warehouse, "warehouse", "", "Warehouse name for warehouse-data feedback")
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "Attachment file path (repeatable)")
	return cmd
}

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header",
		Short: "Ensure the sheet header matches the configured columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			header := sheet.DefaultHeader
			if cfg.Header != "" {
				header, err = sheet.ParseHeaderSpec(cfg.Header)
				if err != nil {
					return err
				}
			}
			store, err := setup.BuildTabular(ctx, cfg)
			if err != nil {
				return err
			}
			rewritten, err := sheet.NewGuard(store, header).Ensure(ctx)
			if err != nil {
				return err
			}
			if rewritten {
				cmd.Printf("header rewritten: %s\n", strings.Join(header, ", "))
			} else {
				cmd.Println("header unchanged")
			}
			return nil
		},
	}
}

func readAttachment(path string) (model.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("read attachment %s: %w", path, err)
	}
	return model.Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentTypeFor(path),
		Data:        data,
	}, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

func printResult(cmd *cobra.Command, result model.Result) {
	switch result.Outcome {
	case model.OutcomeSuccess:
		cmd.Printf("submitted: %s\n", strings.Join(result.Row, " | "))
		for _, link := range result.Links {
			cmd.Printf("  %s -> %s\n", link.Filename, link.URL)
		}
	case model.OutcomeValidationFailed:
		cmd.Printf("validation failed: %v\n", result.Err)
	default:
		cmd.Printf("stage %s failed: %v\n", result.Stage, result.Err)
	}
	for _, warning := range result.Warnings {
		cmd.Printf("warning: %s\n", warning)
	}
}
