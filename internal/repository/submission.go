package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetdrop/sheetdrop/internal/model"
)

// IndexStatus enumerates the lifecycle of an attachment in the text-indexing
// supplement. Attachments that cannot be indexed (non-PDF, or stored on a
// backend without object access) are recorded as skipped.
type IndexStatus string

const (
	IndexPending IndexStatus = "pending"
	IndexDone    IndexStatus = "indexed"
	IndexFailed  IndexStatus = "failed"
	IndexSkipped IndexStatus = "skipped"
)

// Submission is the archive record of one pipeline run: what the draft said,
// how it ended, and the row that was (or was not) written.
type Submission struct {
	ID           string        `json:"id"`
	POC          string        `json:"poc"`
	Team         string        `json:"team"`
	Product      string        `json:"product"`
	Feedback     string        `json:"feedback"`
	Outcome      model.Outcome `json:"outcome"`
	Stage        string        `json:"stage,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Row          []string      `json:"row,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	Notified     bool          `json:"notified"`
	CreatedAt    time.Time     `json:"createdAt"`
	Attachments  []Attachment  `json:"attachments,omitempty"`
}

// Attachment is the archive record of one uploaded file.
type Attachment struct {
	ID            string      `json:"id"`
	SubmissionID  string      `json:"submissionId"`
	FileName      string      `json:"fileName"`
	URL           string      `json:"url"`
	ObjectKey     string      `json:"-"`
	IndexStatus   IndexStatus `json:"indexStatus"`
	ExtractedText string      `json:"extractedText,omitempty"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// SubmissionRepository wraps all SQL used by the API and the worker.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository constructs a repository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// CreateSubmission inserts the archive record for one pipeline run.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, sub *Submission) error {
	sub.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submissions (id, poc, team, product, feedback, outcome, stage, error_message, row_cells, warnings, notified, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, sub.ID, sub.POC, sub.Team, sub.Product, sub.Feedback, sub.Outcome, nullable(sub.Stage), nullable(sub.ErrorMessage), sub.Row, sub.Warnings, sub.Notified, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// CreateAttachment inserts one attachment record tied to a submission.
func (r *SubmissionRepository) CreateAttachment(ctx context.Context, att *Attachment) error {
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submission_attachments (id, submission_id, file_name, url, object_key, index_status, extracted_text, error_message, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,'',NULL,$7,$8)
	`, att.ID, att.SubmissionID, att.FileName, att.URL, nullable(att.ObjectKey), att.IndexStatus, att.CreatedAt, att.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// GetSubmission returns a submission with its attachments.
func (r *SubmissionRepository) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	var (
		sub      Submission
		stage    sql.NullString
		errorMsg sql.NullString
	)
	row := r.pool.QueryRow(ctx, `
		SELECT id, poc, team, product, feedback, outcome, stage, error_message, row_cells, warnings, notified, created_at
		FROM submissions WHERE id=$1
	`, id)
	if err := row.Scan(&sub.ID, &sub.POC, &sub.Team, &sub.Product, &sub.Feedback, &sub.Outcome, &stage, &errorMsg, &sub.Row, &sub.Warnings, &sub.Notified, &sub.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("submission not found: %w", err)
		}
		return nil, fmt.Errorf("select submission: %w", err)
	}
	sub.Stage = stage.String
	sub.ErrorMessage = errorMsg.String
	atts, err := r.attachmentsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Attachments = atts
	return &sub, nil
}

// ListRecent returns the newest submissions without their attachments.
func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, poc, team, product, feedback, outcome, stage, error_message, row_cells, warnings, notified, created_at
		FROM submissions ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		var (
			sub      Submission
			stage    sql.NullString
			errorMsg sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.POC, &sub.Team, &sub.Product, &sub.Feedback, &sub.Outcome, &stage, &errorMsg, &sub.Row, &sub.Warnings, &sub.Notified, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Stage = stage.String
		sub.ErrorMessage = errorMsg.String
		out = append(out, sub)
	}
	return out, rows.Err()
}

// GetAttachment returns one attachment record.
func (r *SubmissionRepository) GetAttachment(ctx context.Context, id string) (*Attachment, error) {
	var (
		att       Attachment
		objectKey sql.NullString
		errorMsg  sql.NullString
	)
	row := r.pool.QueryRow(ctx, `
		SELECT id, submission_id, file_name, url, object_key, index_status, COALESCE(extracted_text,''), error_message, created_at, updated_at
		FROM submission_attachments WHERE id=$1
	`, id)
	if err := row.Scan(&att.ID, &att.SubmissionID, &att.FileName, &att.URL, &objectKey, &att.IndexStatus, &att.ExtractedText, &errorMsg, &att.CreatedAt, &att.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attachment not found: %w", err)
		}
		return nil, fmt.Errorf("select attachment: %w", err)
	}
	att.ObjectKey = objectKey.String
	att.ErrorMessage = errorMsg.String
	return &att, nil
}

// MarkAttachmentIndexed stores the extracted text.
func (r *SubmissionRepository) MarkAttachmentIndexed(ctx context.Context, id, text string) error {
	return r.updateAttachment(ctx, id, IndexDone, &text, nil)
}

// MarkAttachmentFailed records why indexing failed.
func (r *SubmissionRepository) MarkAttachmentFailed(ctx context.Context, id, msg string) error {
	return r.updateAttachment(ctx, id, IndexFailed, nil, &msg)
}

func (r *SubmissionRepository) attachmentsFor(ctx context.Context, submissionID string) ([]Attachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, submission_id, file_name, url, object_key, index_status, COALESCE(extracted_text,''), error_message, created_at, updated_at
		FROM submission_attachments WHERE submission_id=$1 ORDER BY created_at
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()
	var out []Attachment
	for rows.Next() {
		var (
			att       Attachment
			objectKey sql.NullString
			errorMsg  sql.NullString
		)
		if err := rows.Scan(&att.ID, &att.SubmissionID, &att.FileName, &att.URL, &objectKey, &att.IndexStatus, &att.ExtractedText, &errorMsg, &att.CreatedAt, &att.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		att.ObjectKey = objectKey.String
		att.ErrorMessage = errorMsg.String
		out = append(out, att)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) updateAttachment(ctx context.Context, id string, status IndexStatus, text *string, errorMsg *string) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		UPDATE submission_attachments
		SET index_status=$1,
			extracted_text = COALESCE($2, extracted_text),
			error_message = $3,
			updated_at=$4
		WHERE id=$5
	`, status, text, errorMsg, now, id)
	if err != nil {
		return fmt.Errorf("update attachment: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
