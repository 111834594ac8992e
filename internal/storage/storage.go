// Package storage talks to the Google Drive v3 API on behalf of the service.
// The Drive implementation authenticates with a service-account key; swap
// implementations by changing the concrete type injected at startup.
package storage

import (
	"context"

	"google.golang.org/api/drive/v3"
)

// Storage is the interface for remote file operations.
type Storage interface {
	// Upload sends data as a new file named name inside folderID.
	Upload(ctx context.Context, folderID, name, contentType string, data []byte) (*drive.File, error)
	// List returns the provider's file listing body untouched.
	// An empty folderID lists every non-folder file visible to the account.
	List(ctx context.Context, folderID string) ([]byte, error)
	// Get returns metadata for a single file.
	Get(ctx context.Context, fileID string) (*drive.File, error)
	// CreateFolder creates a folder named name under parentID.
	CreateFolder(ctx context.Context, name, parentID string) (*drive.File, error)
	// Delete removes the file identified by fileID.
	Delete(ctx context.Context, fileID string) error
}
