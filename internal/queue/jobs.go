package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// IndexAttachmentTask is scheduled after a successful submission for each
	// PDF attachment stored on a backend that exposes object keys. Indexing
	// happens entirely after the row is written and never changes a
	// submission's outcome.
	IndexAttachmentTask = "attachment:index"
)

// IndexPayload tells the worker which object to fetch and which archive row
// to update with the extracted text.
type IndexPayload struct {
	AttachmentID string `json:"attachment_id"`
	ObjectKey    string `json:"object_key"`
	FileName     string `json:"file_name"`
}

// EnqueueIndex enqueues a text-extraction job for one attachment.
func EnqueueIndex(ctx context.Context, client *asynq.Client, payload IndexPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(IndexAttachmentTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue index task: %w", err)
	}
	return nil
}
