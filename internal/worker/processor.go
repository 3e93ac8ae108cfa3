package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	pdfutil "github.com/sheetdrop/sheetdrop/internal/pdf"
	"github.com/sheetdrop/sheetdrop/internal/queue"
	"github.com/sheetdrop/sheetdrop/internal/repository"
	"github.com/sheetdrop/sheetdrop/internal/s3storage"
)

// Processor is plugged into the asynq worker loop. It runs the post-success
// attachment indexing: download the stored object, extract its text, record
// the result on the attachment's archive row.
type Processor struct {
	repo  *repository.SubmissionRepository
	store *s3storage.Storage
}

// NewProcessor constructs a worker processor.
func NewProcessor(repo *repository.SubmissionRepository, store *s3storage.Storage) *Processor {
	return &Processor{repo: repo, store: store}
}

// Handler registers the index job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.IndexAttachmentTask, p.handleIndex)
	return mux
}

func (p *Processor) handleIndex(ctx context.Context, task *asynq.Task) error {
	var payload queue.IndexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	failure := func(err error) error {
		log.Printf("index failed for %s (%s): %v", payload.AttachmentID, payload.FileName, err)
		_ = p.repo.MarkAttachmentFailed(ctx, payload.AttachmentID, err.Error())
		return err
	}
	data, err := p.store.Download(ctx, payload.ObjectKey)
	if err != nil {
		return failure(err)
	}
	text, err := pdfutil.Extract(data)
	if err != nil {
		if errors.Is(err, pdfutil.ErrNoText) {
			// Nothing to index; record that and stop retrying.
			_ = p.repo.MarkAttachmentFailed(ctx, payload.AttachmentID, err.Error())
			return nil
		}
		return failure(err)
	}
	if err := p.repo.MarkAttachmentIndexed(ctx, payload.AttachmentID, text); err != nil {
		return failure(err)
	}
	log.Printf("attachment %s indexed (%d bytes)", payload.AttachmentID, len(text))
	return nil
}
