package model

import "fmt"

// ValidationError reports a required draft field that was blank after
// trimming. It is produced before any network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

// SchemaError wraps a header read/write failure. It aborts the submission:
// no row may be written against an unknown schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("ensure header: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// UploadError reports a single attachment that could not be stored. The
// pipeline treats it as a per-file skip, not an abort.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Filename, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// SendError reports a failed notification. Notification is best-effort and
// never fails the submission.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("send notification: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// AppendError wraps a failed row append. Nothing is considered submitted when
// it occurs.
type AppendError struct {
	Err error
}

func (e *AppendError) Error() string { return fmt.Sprintf("append row: %v", e.Err) }
func (e *AppendError) Unwrap() error { return e.Err }
