package drive

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memorytrails/service/internal/storage"
)

func newTestRouter(fs *fakeStorage) http.Handler {
	return NewHandler(NewService(fs, "configured-folder"), 1<<20).Routes()
}

func multipartRequest(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if data != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandler_Upload(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, multipartRequest(t, "photo.jpg", "image/jpeg", []byte("jpeg"), map[string]string{"folderId": "album"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var body uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "X", body.FileID)
	assert.Equal(t, "File uploaded successfully", body.Message)

	assert.Equal(t, "album", fs.uploaded.folderID)
	assert.Equal(t, "photo.jpg", fs.uploaded.name)
	assert.Equal(t, "image/jpeg", fs.uploaded.contentType)
}

func TestHandler_Upload_MissingFile(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, multipartRequest(t, "", "", nil, map[string]string{"other": "x"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrEmptyFile.Error(), rec.Body.String())
	assert.Zero(t, fs.calls)
}

func TestHandler_Upload_EmptyFile(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, multipartRequest(t, "empty.txt", "text/plain", []byte{}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, fs.calls)
}

func TestHandler_Upload_NotMultipart(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	newTestRouter(&fakeStorage{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Upload_TooLarge(t *testing.T) {
	fs := &fakeStorage{}
	h := NewHandler(NewService(fs, "configured-folder"), 1024).Routes()
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, multipartRequest(t, "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 4096), nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "the file exceeds the 1024 byte limit", rec.Body.String())
	assert.Zero(t, fs.calls)
}

func TestHandler_Upload_ProviderError(t *testing.T) {
	fs := &fakeStorage{uploadErr: &storage.ProviderError{StatusCode: 403, Status: "Forbidden", Body: "quota exceeded"}}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, multipartRequest(t, "a.txt", "text/plain", []byte("x"), nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "error processing file: "))
	assert.Contains(t, rec.Body.String(), "Forbidden")
	assert.Contains(t, rec.Body.String(), "quota exceeded")
}

func TestHandler_List(t *testing.T) {
	listing := `{"files":[{"id":"1"}],"kind":"drive#fileList"}`
	fs := &fakeStorage{listBody: []byte(listing)}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files?folderId=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, listing, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "abc", fs.listFolder)
}

func TestHandler_List_Error(t *testing.T) {
	rec := httptest.NewRecorder()

	newTestRouter(&fakeStorage{listErr: errors.New("timeout")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error listing files")
}

func TestHandler_Delete(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/delete/abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "File deleted successfully.", rec.Body.String())
	assert.Equal(t, "abc", fs.deleted)
}

func TestHandler_Delete_EscapedID(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/delete/a%2Fb", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a/b", fs.deleted)
}

func TestHandler_Delete_BlankID(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/delete/%20", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrEmptyFileID.Error(), rec.Body.String())
	assert.Zero(t, fs.calls)
}

func TestHandler_Delete_ProviderError(t *testing.T) {
	fs := &fakeStorage{deleteErr: &storage.ProviderError{StatusCode: 404, Status: "Not Found", Body: "File not found"}}
	rec := httptest.NewRecorder()

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/delete/abc", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error deleting file")
	assert.Contains(t, rec.Body.String(), "Not Found")
	assert.Contains(t, rec.Body.String(), "File not found")
}

func TestHandler_Get(t *testing.T) {
	rec := httptest.NewRecorder()

	newTestRouter(&fakeStorage{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "abc", env.Data.ID)
}

func TestHandler_Get_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	fs := &fakeStorage{getErr: &storage.ProviderError{StatusCode: 404, Status: "Not Found"}}

	newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateFolder(t *testing.T) {
	fs := &fakeStorage{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"folderName":"albums"}`))

	newTestRouter(fs).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "configured-folder", fs.folderParent)
}

func TestHandler_CreateFolder_BadRequest(t *testing.T) {
	for _, body := range []string{`{`, `{"folderName":""}`} {
		fs := &fakeStorage{}
		rec := httptest.NewRecorder()

		newTestRouter(fs).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Zero(t, fs.calls)
	}
}
