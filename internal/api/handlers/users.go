// users.go — endpoints управления пользователями и аутентификации.
// Все операции не требуют подтверждения личности вызывающего —
// токены не выдаются и не проверяются.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gofileserver/internal/api/errors"
	"github.com/bigkaa/gofileserver/internal/domain/model"
	"github.com/bigkaa/gofileserver/internal/service"
)

// UsersHandler — обработчик endpoints пользователей.
type UsersHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUsersHandler создаёт обработчик endpoints пользователей.
func NewUsersHandler(svc *service.UserService, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		svc:    svc,
		logger: logger.With(slog.String("component", "users_handler")),
	}
}

// Authenticate обрабатывает POST /api/users/authenticate.
func (h *UsersHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req model.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}

	resp, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create обрабатывает POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}

	created, err := h.svc.Create(r.Context(), &u)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// List обрабатывает GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Get обрабатывает GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Update обрабатывает PUT /api/users/{id}.
// Обновляются только name и email; пароль этой операцией не меняется.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный JSON: %s", err.Error()))
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.Name, req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete обрабатывает DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("User Deleted"))
}

// writeServiceError транслирует ошибку сервисного слоя в HTTP-ответ.
func (h *UsersHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		apierrors.Unauthorized(w, "Неверный email или пароль")
	default:
		h.logger.Error("Внутренняя ошибка операции с пользователем", slog.String("error", err.Error()))
		apierrors.InternalError(w, err.Error())
	}
}
