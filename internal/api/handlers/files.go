// Пакет handlers — HTTP handlers File Server.
// files.go — файловые endpoints: upload, list, download, view, delete, metadata.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gofileserver/internal/api/errors"
	"github.com/bigkaa/gofileserver/internal/domain/model"
	"github.com/bigkaa/gofileserver/internal/service"
)

// FilesHandler — обработчик файловых endpoints.
type FilesHandler struct {
	svc             *service.FileService
	maxUploadMemory int64
	logger          *slog.Logger
}

// NewFilesHandler создаёт обработчик файловых endpoints.
// maxUploadMemory — лимит памяти для буферизации multipart form.
func NewFilesHandler(svc *service.FileService, maxUploadMemory int64, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		svc:             svc,
		maxUploadMemory: maxUploadMemory,
		logger:          logger.With(slog.String("component", "files_handler")),
	}
}

// Upload обрабатывает POST /api/upload.
// Multipart form: file (обязательно), userId (обязательно).
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	userID := r.FormValue("userId")
	if userID == "" {
		apierrors.ValidationError(w, "Поле 'userId' обязательно")
		return
	}

	// MIME-тип берётся из заголовка part как заявил клиент
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta, err := h.svc.Upload(r.Context(), file, header.Filename, contentType, header.Size, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// List обрабатывает GET /api/files?userId=.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	files, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if files == nil {
		files = []*model.FileMetadata{}
	}

	writeJSON(w, http.StatusOK, files)
}

// Download обрабатывает GET /api/download/{id}?userId=.
// Отдаёт содержимое как attachment с оригинальным именем файла.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")

	rc, meta, err := h.svc.Download(r.Context(), id, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.OriginalFileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		// Заголовки уже отправлены; прерванную передачу можно только залогировать
		h.logger.Warn("Ошибка передачи файла клиенту",
			slog.String("file_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// View обрабатывает GET /api/view/{id}?userId=.
// Отдаёт содержимое inline с заявленным при загрузке MIME-типом.
// Файл буферизуется в памяти целиком, ограничения на размер нет.
func (h *FilesHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")

	meta, content, err := h.svc.View(r.Context(), id, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	contentType := meta.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", meta.OriginalFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// Delete обрабатывает DELETE /api/delete/{id}?userId=.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")

	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("File Deleted"))
}

// GetMetadata обрабатывает GET /api/metadata/{id}?userId=.
// Только запись метаданных, без доступа к содержимому.
func (h *FilesHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")

	meta, err := h.svc.GetMetadata(r.Context(), id, userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
func (h *FilesHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, err.Error())
	default:
		h.logger.Error("Внутренняя ошибка файловой операции", slog.String("error", err.Error()))
		apierrors.InternalError(w, err.Error())
	}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
