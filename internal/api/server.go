package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sheetdrop/sheetdrop/internal/config"
	"github.com/sheetdrop/sheetdrop/internal/model"
	"github.com/sheetdrop/sheetdrop/internal/pipeline"
	"github.com/sheetdrop/sheetdrop/internal/queue"
	"github.com/sheetdrop/sheetdrop/internal/repository"
)

// Server exposes HTTP endpoints: submission intake plus read access to the
// archive. It is the draft producer; all submission semantics live in the
// pipeline.
type Server struct {
	cfg    *config.Config
	pipe   *pipeline.Pipeline
	repo   *repository.SubmissionRepository
	queue  *asynq.Client
	server *http.Server
	once   sync.Once
}

// New constructs a Server. queueClient may be nil when no Redis is
// configured; attachments are then archived as skipped instead of queued for
// indexing.
func New(cfg *config.Config, pipe *pipeline.Pipeline, repo *repository.SubmissionRepository, queueClient *asynq.Client) *Server {
	return &Server{
		cfg:   cfg,
		pipe:  pipe,
		repo:  repo,
		queue: queueClient,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", s.handleHealth)
		mux.HandleFunc("/submissions", s.handleSubmissions)
		mux.HandleFunc("/submissions/", s.handleSubmissionRoute)
		mux.HandleFunc("/attachments/", s.handleAttachmentRoute)
		s.server = &http.Server{
			Addr:    s.cfg.Address,
			Handler: corsMiddleware(loggingMiddleware(mux)),
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Printf("api listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmissionRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/submissions/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if s.repo == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	sub, err := s.repo.GetSubmission(r.Context(), id)
	if err != nil {
		http.Error(w, "submission not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// handleAttachmentRoute serves one archived attachment, the reader of the
// indexing state and extracted text the worker produces.
func (s *Server) handleAttachmentRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/attachments/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if s.repo == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	att, err := s.repo.GetAttachment(r.Context(), id)
	if err != nil {
		http.Error(w, "attachment not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, att)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	subs, err := s.repo.ListRecent(r.Context(), 50)
	if err != nil {
		log.Printf("list submissions: %v", err)
		http.Error(w, "failed to list submissions", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

// submitResponse is the wire form of a pipeline result.
type submitResponse struct {
	ID       string                `json:"id"`
	Outcome  model.Outcome         `json:"outcome"`
	Stage    model.Stage           `json:"stage,omitempty"`
	Error    string                `json:"error,omitempty"`
	Row      []string              `json:"row,omitempty"`
	Links    []model.AttachmentRef `json:"links,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
	Notified bool                  `json:"notified"`
}

// errRequestTooLarge marks the whole-request cap being hit, distinct from a
// malformed multipart body.
var errRequestTooLarge = errors.New("request body exceeds the configured size limit")

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
	draft, err := s.parseDraft(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errRequestTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	result := s.pipe.Submit(ctx, draft)
	id := uuid.NewString()
	s.archive(ctx, id, draft, result)

	resp := submitResponse{
		ID:       id,
		Outcome:  result.Outcome,
		Stage:    result.Stage,
		Row:      result.Row,
		Links:    result.Links,
		Warnings: result.Warnings,
		Notified: result.Notified,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	switch result.Outcome {
	case model.OutcomeSuccess:
		respondJSON(w, http.StatusCreated, resp)
	case model.OutcomeValidationFailed:
		respondJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		respondJSON(w, http.StatusBadGateway, resp)
	}
}

// parseDraft reads the multipart form into a Draft. Field names follow the
// original form: poc, team, date, product, feedback, description, impact,
// warehouse, plus repeated "attachments" file parts.
func (s *Server) parseDraft(r *http.Request) (model.Draft, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.Draft{}, errRequestTooLarge
		}
		return model.Draft{}, errors.New("expecting multipart form")
	}
	draft := model.Draft{
		POC:         r.FormValue("poc"),
		Team:        r.FormValue("team"),
		Product:     r.FormValue("product"),
		Feedback:    r.FormValue("feedback"),
		Description: r.FormValue("description"),
		Impact:      r.FormValue("impact"),
		Warehouse:   r.FormValue("warehouse"),
	}
	if raw := r.FormValue("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return model.Draft{}, errors.New("date must be YYYY-MM-DD")
		}
		draft.Date = d
	}
	if r.MultipartForm == nil {
		return draft, nil
	}
	for _, header := range r.MultipartForm.File["attachments"] {
		att, err := s.readAttachment(header)
		if err != nil {
			return model.Draft{}, err
		}
		draft.Attachments = append(draft.Attachments, att)
	}
	return draft, nil
}

func (s *Server) readAttachment(header *multipart.FileHeader) (model.Attachment, error) {
	if header.Size > s.cfg.MaxAttachmentSize {
		return model.Attachment{}, errors.New("attachment exceeds size limit: " + header.Filename)
	}
	f, err := header.Open()
	if err != nil {
		return model.Attachment{}, errors.New("read attachment: " + header.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return model.Attachment{}, errors.New("read attachment: " + header.Filename)
	}
	return model.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// archive records the pipeline run and queues PDF attachments for indexing.
// Archive failures are logged, never surfaced: the sheet append is the source
// of truth for whether a submission happened.
func (s *Server) archive(ctx context.Context, id string, draft model.Draft, result model.Result) {
	if s.repo == nil {
		return
	}
	sub := &repository.Submission{
		ID:       id,
		POC:      draft.POC,
		Team:     draft.Team,
		Product:  draft.Product,
		Feedback: draft.Feedback,
		Outcome:  result.Outcome,
		Stage:    string(result.Stage),
		Row:      result.Row,
		Warnings: result.Warnings,
		Notified: result.Notified,
	}
	if result.Err != nil {
		sub.ErrorMessage = result.Err.Error()
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		log.Printf("archive submission %s: %v", id, err)
		return
	}
	for _, ref := range result.Links {
		att := &repository.Attachment{
			ID:           uuid.NewString(),
			SubmissionID: id,
			FileName:     ref.Filename,
			URL:          ref.URL,
			ObjectKey:    ref.ObjectKey,
			IndexStatus:  repository.IndexSkipped,
		}
		if s.queue != nil && ref.ObjectKey != "" && isPDF(ref.Filename) {
			att.IndexStatus = repository.IndexPending
		}
		if err := s.repo.CreateAttachment(ctx, att); err != nil {
			log.Printf("archive attachment %s: %v", ref.Filename, err)
			continue
		}
		if att.IndexStatus != repository.IndexPending {
			continue
		}
		payload := queue.IndexPayload{
			AttachmentID: att.ID,
			ObjectKey:    ref.ObjectKey,
			FileName:     ref.Filename,
		}
		if err := queue.EnqueueIndex(ctx, s.queue, payload); err != nil {
			log.Printf("enqueue index for %s: %v", ref.Filename, err)
			_ = s.repo.MarkAttachmentFailed(ctx, att.ID, err.Error())
		}
	}
}

func isPDF(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ".pdf")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
