// Package drive implements the attachment store on Google Drive, the vendor
// surface the hosted deployment uses: create the file under a shared-drive
// folder, grant anyone-with-the-link read access, and hand back the view URL.
package drive

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sheetdrop/sheetdrop/internal/model"
)

const defaultContentType = "application/octet-stream"

// Store uploads attachments into one shared-drive folder.
type Store struct {
	svc      *drive.Service
	folderID string
}

// New builds a Drive-backed store from service-account credentials JSON.
func New(ctx context.Context, credentials []byte, folderID string) (*Store, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	return &Store{svc: svc, folderID: folderID}, nil
}

// Upload creates the file, makes it public, and returns the sharing URL.
// The create and the permission grant fail independently; either one turns
// into an UploadError for this file only.
func (s *Store) Upload(ctx context.Context, att model.Attachment) (model.AttachmentRef, error) {
	contentType := att.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	meta := &drive.File{
		Name:    att.Filename,
		Parents: []string{s.folderID},
	}
	created, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(att.Data), googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return model.AttachmentRef{}, &model.UploadError{Filename: att.Filename, Err: fmt.Errorf("create file: %w", err)}
	}
	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := s.svc.Permissions.Create(created.Id, perm).
		SupportsAllDrives(true).
		Context(ctx).Do(); err != nil {
		return model.AttachmentRef{}, &model.UploadError{Filename: att.Filename, Err: fmt.Errorf("set permission: %w", err)}
	}
	return model.AttachmentRef{
		Filename: att.Filename,
		URL:      fmt.Sprintf("https://drive.google.com/file/d/%s/view?usp=sharing", created.Id),
	}, nil
}
