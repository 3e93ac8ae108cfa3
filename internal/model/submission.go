// Package model contains the value types passed between the intake surface,
// the submission pipeline, and the archive.
package model

import (
	"time"
)

// Attachment is one file handed in with a draft: the original filename, the
// declared MIME type (may be empty), and the raw bytes.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft is one user's form input before it has been written anywhere. POC and
// Feedback are required; everything else is optional and rendered as a
// placeholder cell when blank. Drafts are immutable once handed to the
// pipeline.
type Draft struct {
	POC         string
	Team        string
	Date        time.Time // zero value means "today"
	Product     string
	Feedback    string
	Description string
	Impact      string
	Warehouse   string
	Attachments []Attachment
}

// AttachmentRef points at a successfully uploaded attachment. ObjectKey is set
// by backends that keep an addressable object (S3/MinIO) and is empty for
// Drive, whose files are only reachable through the view URL.
type AttachmentRef struct {
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	ObjectKey string `json:"-"`
}

// Outcome tags the terminal state of one submission.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeValidationFailed Outcome = "validation_failed"
	OutcomeStageFailed      Outcome = "stage_failed"
)

// Stage names the pipeline step a StageFailed outcome stopped at.
type Stage string

const (
	StageSchema Stage = "schema"
	StageUpload Stage = "upload"
	StageNotify Stage = "notify"
	StageAppend Stage = "append"
)

// Result is what Submit returns. Row and Links are populated only on success.
// Warnings collects the best-effort failures (per-file upload skips, a failed
// notification) that did not change the outcome.
type Result struct {
	Outcome  Outcome
	Stage    Stage
	Err      error
	Row      []string
	Links    []AttachmentRef
	Warnings []string
	Notified bool
}
