package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// DefaultAPIBaseURL is the Google APIs host used when DriveConfig.APIBaseURL is empty.
const DefaultAPIBaseURL = "https://www.googleapis.com"

// FolderMimeType identifies Drive folders.
const FolderMimeType = "application/vnd.google-apps.folder"

const metadataFields = "id,name,mimeType,createdTime,modifiedTime,parents,webViewLink,size"

// ErrCredentials is returned when the service-account key cannot be loaded.
var ErrCredentials = errors.New("drive credentials unavailable")

// ProviderError is a non-success response returned by Drive.
type ProviderError struct {
	StatusCode int
	Status     string // reason phrase, e.g. "Not Found"
	Message    string // message from the provider's JSON error, if any
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s - details: %s", e.Status, e.Body)
}

// DriveConfig holds the explicit inputs of the Drive transport.
type DriveConfig struct {
	CredentialsFile string
	APIBaseURL      string
}

// DriveStorage implements Storage against the Drive v3 REST API.
type DriveStorage struct {
	client    *http.Client
	filesURL  string
	uploadURL string
}

// NewDriveStorage loads the service-account key from cfg.CredentialsFile and
// returns a DriveStorage whose requests carry a bearer token for the full
// Drive scope.
func NewDriveStorage(ctx context.Context, cfg DriveConfig) (*DriveStorage, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: no credentials file configured", ErrCredentials)
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrCredentials, cfg.CredentialsFile, err)
	}
	return NewDriveStorageFromJSON(ctx, data, cfg.APIBaseURL)
}

// NewDriveStorageFromJSON is NewDriveStorage for an already-loaded key.
// Only service-account keys are accepted.
func NewDriveStorageFromJSON(ctx context.Context, credentialsJSON []byte, apiBaseURL string) (*DriveStorage, error) {
	creds, err := google.CredentialsFromJSONWithType(ctx, credentialsJSON, google.ServiceAccount, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse key: %v", ErrCredentials, err)
	}
	return newDriveStorage(oauth2.NewClient(ctx, creds.TokenSource), apiBaseURL), nil
}

func newDriveStorage(client *http.Client, apiBaseURL string) *DriveStorage {
	base := strings.TrimRight(apiBaseURL, "/")
	if base == "" {
		base = DefaultAPIBaseURL
	}
	return &DriveStorage{
		client:    client,
		filesURL:  base + "/drive/v3/files",
		uploadURL: base + "/upload/drive/v3/files",
	}
}

// Upload sends a multipart/related request carrying the JSON metadata and the
// raw bytes. The boundary is random per request.
func (s *DriveStorage) Upload(ctx context.Context, folderID, name, contentType string, data []byte) (*drive.File, error) {
	metadata, err := json.Marshal(&drive.File{Name: name, Parents: []string{folderID}})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	body, boundary, err := multipartBody(metadata, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	u := s.uploadURL + "?" + url.Values{"uploadType": {"multipart"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "multipart/related; boundary="+boundary)

	f := &drive.File{}
	if err := s.doJSON(req, f); err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}
	log.Printf("drive: uploaded %q id=%s", name, f.Id)
	return f, nil
}

// List returns the body of a files.list call restricted to non-folder items.
func (s *DriveStorage) List(ctx context.Context, folderID string) ([]byte, error) {
	q := "mimeType != '" + FolderMimeType + "'"
	if folderID != "" {
		q = "'" + escapeQuery(folderID) + "' in parents and " + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.filesURL+"?"+url.Values{"q": {q}}.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer googleapi.CloseBody(res)

	if err := checkResponse(res); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read list response: %w", err)
	}
	return b, nil
}

// Get fetches the metadata of fileID.
func (s *DriveStorage) Get(ctx context.Context, fileID string) (*drive.File, error) {
	u := s.fileURL(fileID) + "?" + url.Values{"fields": {metadataFields}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build get request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	f := &drive.File{}
	if err := s.doJSON(req, f); err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}
	return f, nil
}

// CreateFolder creates an empty folder.
func (s *DriveStorage) CreateFolder(ctx context.Context, name, parentID string) (*drive.File, error) {
	payload, err := json.Marshal(&drive.File{Name: name, MimeType: FolderMimeType, Parents: []string{parentID}})
	if err != nil {
		return nil, fmt.Errorf("encode folder: %w", err)
	}

	u := s.filesURL + "?" + url.Values{"fields": {metadataFields}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build create folder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	f := &drive.File{}
	if err := s.doJSON(req, f); err != nil {
		return nil, fmt.Errorf("create folder %q: %w", name, err)
	}
	log.Printf("drive: created folder %q id=%s", name, f.Id)
	return f, nil
}

// Delete removes fileID. Any 2xx status, 204 included, counts as success.
func (s *DriveStorage) Delete(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.fileURL(fileID), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	defer googleapi.CloseBody(res)

	if err := checkResponse(res); err != nil {
		log.Printf("drive: delete %s failed: %v", fileID, err)
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	log.Printf("drive: deleted id=%s", fileID)
	return nil
}

func (s *DriveStorage) fileURL(fileID string) string {
	return s.filesURL + "/" + url.PathEscape(fileID)
}

// doJSON executes req and decodes a successful response into v.
func (s *DriveStorage) doJSON(req *http.Request, v interface{}) error {
	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(res)

	if err := checkResponse(res); err != nil {
		return err
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkResponse converts a non-2xx response into a *ProviderError.
func checkResponse(res *http.Response) error {
	err := googleapi.CheckResponse(res)
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	return &ProviderError{
		StatusCode: gerr.Code,
		Status:     statusMessage(res),
		Message:    gerr.Message,
		Body:       gerr.Body,
	}
}

// statusMessage returns the reason phrase of res, e.g. "Not Found".
func statusMessage(res *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return msg
}

func multipartBody(metadata []byte, name, contentType string, data []byte) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	mh := textproto.MIMEHeader{}
	mh.Set("Content-Type", "application/json; charset=UTF-8")
	mh.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "metadata"}))
	part, err := w.CreatePart(mh)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(metadata); err != nil {
		return nil, "", err
	}

	fh := textproto.MIMEHeader{}
	fh.Set("Content-Type", contentType)
	fh.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": name}))
	part, err = w.CreatePart(fh)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.Boundary(), nil
}

// escapeQuery escapes a value for use inside a single-quoted Drive query string.
func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
