package drive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/memorytrails/service/internal/response"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Handler holds HTTP handlers for Drive endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new Drive Handler. Request bodies on upload are capped
// at maxUploadBytes; zero or less disables the cap.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Routes returns a router with every Drive endpoint, meant to be mounted at /drive.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload", h.Upload)
	r.Get("/files", h.List)
	r.Get("/files/{fileId}", h.Get)
	r.Post("/folders", h.CreateFolder)
	r.Delete("/delete/{fileId}", h.Delete)
	return r
}

type uploadResponse struct {
	Success bool   `json:"success" example:"true"`
	FileID  string `json:"fileId"  example:"1AbCdEfGhIjKlMnOp"`
	Message string `json:"message" example:"File uploaded successfully"`
}

type createFolderRequest struct {
	FolderName string `json:"folderName" example:"2026 trip"`
	ParentID   string `json:"parentId"   example:"1RootFolderId"`
}

// Upload godoc
//
//	@Summary		Upload file
//	@Description	Upload a file to the configured Drive folder, or to folderId when given.
//	@Tags			drive
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to upload"
//	@Param			folderId	formData	string	false	"Destination folder override"
//	@Success		200			{object}	uploadResponse
//	@Failure		400			{string}	string
//	@Failure		500			{string}	string
//	@Router			/drive/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Text(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("the file exceeds the %d byte limit", tooLarge.Limit))
			return
		}
		response.Text(w, http.StatusBadRequest, ErrEmptyFile.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Text(w, http.StatusBadRequest, ErrEmptyFile.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Text(w, http.StatusInternalServerError, "error processing file: "+err.Error())
		return
	}

	id, err := h.svc.Upload(r.Context(), &Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		FolderID:    r.FormValue("folderId"),
	})
	if err != nil {
		if h.svc.IsValidation(err) {
			response.Text(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Text(w, http.StatusInternalServerError, "error processing file: "+err.Error())
		return
	}

	response.JSON(w, http.StatusOK, uploadResponse{
		Success: true,
		FileID:  id,
		Message: "File uploaded successfully",
	})
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns the raw Drive listing of non-folder files.
//	@Tags			drive
//	@Produce		json
//	@Param			folderId	query		string	false	"Only list files inside this folder"
//	@Success		200			{object}	object
//	@Failure		500			{string}	string
//	@Router			/drive/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.List(r.Context(), r.URL.Query().Get("folderId"))
	if err != nil {
		response.Text(w, http.StatusInternalServerError, "error listing files: "+err.Error())
		return
	}
	response.Raw(w, http.StatusOK, b)
}

// Get godoc
//
//	@Summary		Get file metadata
//	@Tags			drive
//	@Produce		json
//	@Param			fileId	path		string	true	"Drive file ID"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/drive/files/{fileId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	f, err := h.svc.Get(r.Context(), fileID)
	if err != nil {
		switch {
		case h.svc.IsValidation(err):
			response.BadRequest(w, err.Error())
		case h.svc.IsNotFound(err):
			response.NotFound(w, "file not found")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, f)
}

// CreateFolder godoc
//
//	@Summary		Create folder
//	@Description	Create a folder under parentId, or under the configured folder.
//	@Tags			drive
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createFolderRequest	true	"Folder details"
//	@Success		201		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/drive/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	f, err := h.svc.CreateFolder(r.Context(), req.FolderName, req.ParentID)
	if err != nil {
		if h.svc.IsValidation(err) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}
	response.Created(w, f)
}

// Delete godoc
//
//	@Summary		Delete file
//	@Tags			drive
//	@Produce		plain
//	@Param			fileId	path		string	true	"Drive file ID"
//	@Success		200		{string}	string
//	@Failure		400		{string}	string
//	@Failure		500		{string}	string
//	@Router			/drive/delete/{fileId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID, err := fileIDParam(r)
	if err != nil {
		response.Text(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), fileID); err != nil {
		if h.svc.IsValidation(err) {
			response.Text(w, http.StatusBadRequest, err.Error())
			return
		}
		response.Text(w, http.StatusInternalServerError, "error deleting file: "+err.Error())
		return
	}
	response.Text(w, http.StatusOK, "File deleted successfully.")
}

// fileIDParam returns the decoded {fileId} path segment. chi hands back the
// raw segment when the path carries escapes.
func fileIDParam(r *http.Request) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, "fileId"))
	if err != nil {
		return "", fmt.Errorf("invalid file ID: %w", err)
	}
	return id, nil
}
