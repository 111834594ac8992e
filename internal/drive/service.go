// Package drive exposes Google Drive file operations over HTTP.
package drive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	gdrive "google.golang.org/api/drive/v3"

	"github.com/memorytrails/service/internal/storage"
)

// DefaultContentType is used when an upload declares no content type.
const DefaultContentType = "application/octet-stream"

var (
	// ErrEmptyFile is returned when no file, or an empty one, is uploaded.
	ErrEmptyFile = errors.New("the file is empty or was not sent")
	// ErrEmptyFilename is returned when the uploaded file has no name.
	ErrEmptyFilename = errors.New("the file name must not be empty")
	// ErrEmptyFileID is returned when a file identifier is missing.
	ErrEmptyFileID = errors.New("the file ID must not be empty")
	// ErrEmptyFolderName is returned when a folder is created without a name.
	ErrEmptyFolderName = errors.New("the folder name is required")
)

// Upload is a file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
	// FolderID overrides the configured destination folder when set.
	FolderID string
}

// Service validates requests and delegates them to storage.
type Service struct {
	store    storage.Storage
	folderID string
}

// NewService creates a Service that uploads into folderID by default.
func NewService(store storage.Storage, folderID string) *Service {
	return &Service{store: store, folderID: folderID}
}

// Upload stores u in Drive and returns the identifier Drive assigned to it.
func (s *Service) Upload(ctx context.Context, u *Upload) (string, error) {
	if u == nil || len(u.Data) == 0 {
		return "", ErrEmptyFile
	}
	if strings.TrimSpace(u.Name) == "" {
		return "", ErrEmptyFilename
	}

	contentType := u.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	folderID := u.FolderID
	if folderID == "" {
		folderID = s.folderID
	}

	log.Printf("drive: starting upload of %q (%d bytes, %s)", u.Name, len(u.Data), contentType)
	f, err := s.store.Upload(ctx, folderID, u.Name, contentType, u.Data)
	if err != nil {
		var perr *storage.ProviderError
		if errors.As(err, &perr) {
			log.Printf("drive: upload failed: %d %s", perr.StatusCode, perr.Status)
			log.Printf("drive: details: %s", perr.Body)
		} else {
			log.Printf("drive: upload failed: %v", err)
		}
		return "", err
	}
	log.Printf("drive: upload complete, id=%s", f.Id)
	return f.Id, nil
}

// List returns the provider's listing of non-folder files, unmodified.
func (s *Service) List(ctx context.Context, folderID string) ([]byte, error) {
	b, err := s.store.List(ctx, strings.TrimSpace(folderID))
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return b, nil
}

// Get returns the metadata of a single file.
func (s *Service) Get(ctx context.Context, fileID string) (*gdrive.File, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, ErrEmptyFileID
	}
	return s.store.Get(ctx, fileID)
}

// CreateFolder creates a folder under parentID, or under the configured
// folder when parentID is empty.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (*gdrive.File, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyFolderName
	}
	if parentID == "" {
		parentID = s.folderID
	}
	return s.store.CreateFolder(ctx, name, parentID)
}

// Delete removes a file from Drive.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return ErrEmptyFileID
	}
	return s.store.Delete(ctx, fileID)
}

// IsValidation returns true when err was caused by invalid client input.
func (s *Service) IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrEmptyFilename) ||
		errors.Is(err, ErrEmptyFileID) ||
		errors.Is(err, ErrEmptyFolderName)
}

// IsNotFound returns true when Drive reported that the file does not exist.
func (s *Service) IsNotFound(err error) bool {
	var perr *storage.ProviderError
	return errors.As(err, &perr) && perr.StatusCode == 404
}
