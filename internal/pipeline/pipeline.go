// Package pipeline drives one submission from validated draft to appended
// row: ensure schema, upload attachments, notify the partner mailbox for the
// trigger category, compose the row, append it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sheetdrop/sheetdrop/internal/model"
	"github.com/sheetdrop/sheetdrop/internal/sheet"
)

// AttachmentStore uploads one attachment and returns a public link to it.
type AttachmentStore interface {
	Upload(ctx context.Context, att model.Attachment) (model.AttachmentRef, error)
}

// Notifier delivers the best-effort partner notification. detail carries the
// category-specific sub-entity (the warehouse name).
type Notifier interface {
	Send(ctx context.Context, body, detail string) error
}

// Options wires the pipeline's collaborators. Store and Notifier may be nil:
// without a store every attachment is skipped with a warning, and without a
// notifier the trigger category only affects the partner-flag cell.
type Options struct {
	Guard    *sheet.Guard
	Sink     *sheet.Sink
	Builder  *sheet.RowBuilder
	Store    AttachmentStore
	Notifier Notifier

	// TriggerCategory selects which Product value causes a notification;
	// empty disables notifications entirely.
	TriggerCategory string
	// Recipient is rendered into the partner-flag cell ("Yes - <recipient>").
	Recipient string
	// Delimiter joins attachment links into the single attachments cell.
	Delimiter string
	// AllowedTypes restricts attachment MIME types; empty allows everything.
	AllowedTypes []string
}

// Pipeline is the submission orchestrator. One Pipeline serves any number of
// submissions; it holds no per-submission state.
type Pipeline struct {
	opts Options
}

// New validates the option set and returns a ready pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Guard == nil || opts.Sink == nil || opts.Builder == nil {
		return nil, fmt.Errorf("pipeline requires a guard, a sink, and a row builder")
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ", "
	}
	return &Pipeline{opts: opts}, nil
}

// Submit runs the draft through every stage and returns the terminal outcome.
// Validation happens before any network call; schema always precedes uploads
// and the append; uploads precede row composition; the notification runs
// before the append so its failure can never be attributed to a half-written
// sheet.
func (p *Pipeline) Submit(ctx context.Context, draft model.Draft) model.Result {
	if field, ok := p.validate(draft); !ok {
		return model.Result{
			Outcome: model.OutcomeValidationFailed,
			Err:     &model.ValidationError{Field: field},
		}
	}

	if _, err := p.opts.Guard.Ensure(ctx); err != nil {
		return stageFailed(model.StageSchema, &model.SchemaError{Err: err})
	}

	links, warnings := p.uploadAll(ctx, draft.Attachments)

	notified := false
	if p.shouldNotify(draft) {
		notified = true
		if err := p.opts.Notifier.Send(ctx, draft.Feedback, draft.Warehouse); err != nil {
			var sendErr *model.SendError
			if !errors.As(err, &sendErr) {
				sendErr = &model.SendError{Err: err}
			}
			log.Printf("notification failed: %v", sendErr)
			warnings = append(warnings, sendErr.Error())
		}
	}

	row := p.opts.Builder.Build(sheet.RowInput{
		Draft:       draft,
		Attachments: p.linkCell(links),
		PartnerFlag: p.partnerFlag(notified),
	})

	if err := p.opts.Sink.Append(ctx, row); err != nil {
		return stageFailed(model.StageAppend, &model.AppendError{Err: err})
	}

	return model.Result{
		Outcome:  model.OutcomeSuccess,
		Row:      row,
		Links:    links,
		Warnings: warnings,
		Notified: notified,
	}
}

func (p *Pipeline) validate(draft model.Draft) (field string, ok bool) {
	if strings.TrimSpace(draft.POC) == "" {
		return "poc", false
	}
	if strings.TrimSpace(draft.Feedback) == "" {
		return "feedback", false
	}
	return "", true
}

// uploadAll stores each attachment in draft order. A failed or disallowed
// file is skipped with a warning; the surviving links keep their input order.
func (p *Pipeline) uploadAll(ctx context.Context, atts []model.Attachment) ([]model.AttachmentRef, []string) {
	var (
		links    []model.AttachmentRef
		warnings []string
	)
	for _, att := range atts {
		if !p.typeAllowed(att.ContentType) {
			warnings = append(warnings, fmt.Sprintf("skipped %s: type %s not allowed", att.Filename, att.ContentType))
			continue
		}
		if p.opts.Store == nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: no attachment store configured", att.Filename))
			continue
		}
		ref, err := p.opts.Store.Upload(ctx, att)
		if err != nil {
			log.Printf("attachment upload failed: %v", err)
			warnings = append(warnings, err.Error())
			continue
		}
		links = append(links, ref)
	}
	return links, warnings
}

func (p *Pipeline) typeAllowed(contentType string) bool {
	if len(p.opts.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range p.opts.AllowedTypes {
		if allowed == contentType {
			return true
		}
	}
	return false
}

func (p *Pipeline) shouldNotify(draft model.Draft) bool {
	return p.opts.Notifier != nil &&
		p.opts.TriggerCategory != "" &&
		draft.Product == p.opts.TriggerCategory
}

func (p *Pipeline) linkCell(links []model.AttachmentRef) string {
	if len(links) == 0 {
		return ""
	}
	urls := make([]string, len(links))
	for i, ref := range links {
		urls[i] = ref.URL
	}
	return strings.Join(urls, p.opts.Delimiter)
}

func (p *Pipeline) partnerFlag(notified bool) string {
	if notified {
		return "Yes - " + p.opts.Recipient
	}
	return "No"
}

func stageFailed(stage model.Stage, err error) model.Result {
	return model.Result{
		Outcome: model.OutcomeStageFailed,
		Stage:   stage,
		Err:     err,
	}
}
