package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"diarioweb/internal/access"
	"diarioweb/internal/diary/model"
	"diarioweb/internal/diary/service"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/request"
	"diarioweb/pkg/response"

	"github.com/go-chi/chi/v5"
)

const (
	uploadField     = "diaryFile"
	multipartMemory = 8 << 20
)

type DiaryHandler struct {
	Service        *service.DiaryService
	MaxUploadBytes int64
}

func NewDiaryHandler(service *service.DiaryService, maxUploadBytes int64) *DiaryHandler {
	return &DiaryHandler{Service: service, MaxUploadBytes: maxUploadBytes}
}

// failOwner handles the errors every diary route shares and reports
// whether it wrote a response.
func failOwner(w http.ResponseWriter, err error) bool {
	if errors.Is(err, service.ErrUnknownOwner) {
		response.Error(w, http.StatusUnauthorized, "User not found.")
		return true
	}
	return false
}

func (h *DiaryHandler) Upload(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	// Room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+multipartMemory/8)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
			return
		}
		response.Error(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()
	if header.Size > h.MaxUploadBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large.")
		return
	}

	entry, err := h.Service.Upload(r.Context(), auth.Name, header.Filename, file)
	if err != nil {
		if !failOwner(w, err) {
			response.Fail(w, err, "")
		}
		return
	}
	response.JSON(w, http.StatusCreated, model.UploadResponse{
		ID:       entry.ID,
		Filename: entry.FileReference,
		Message:  "Diary entry uploaded successfully.",
	})
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	entries, err := h.Service.List(r.Context(), auth.Name)
	if err != nil {
		if !failOwner(w, err) {
			response.Fail(w, err, "")
		}
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *DiaryHandler) Download(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	ref := chi.URLParam(r, "ref")

	rc, err := h.Service.Open(r.Context(), auth.Name, ref)
	switch {
	case err == nil:
	case failOwner(w, err):
		return
	case errors.Is(err, service.ErrBlobMissing):
		response.Error(w, http.StatusNotFound, "File not found on server.")
		return
	case errors.Is(err, apperror.ErrNotFound):
		response.Error(w, http.StatusNotFound, "File not found or you do not have permission to download it.")
		return
	default:
		logger.Sugar.Errorf("Failed to open diary file %s: %v", ref, err)
		response.Error(w, http.StatusInternalServerError, "Error downloading file.")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ref}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Sugar.Errorf("Failed to stream diary file %s: %v", ref, err)
	}
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	if err := h.Service.Delete(r.Context(), auth.Name, id); err != nil {
		if !failOwner(w, err) {
			response.Fail(w, err, "Diary entry not found or you do not have permission to delete it.")
		}
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Diary entry deleted successfully."})
}
