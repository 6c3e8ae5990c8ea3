package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/gofileserver/internal/api/handlers"
	"github.com/bigkaa/gofileserver/internal/domain/model"
	"github.com/bigkaa/gofileserver/internal/repository"
	"github.com/bigkaa/gofileserver/internal/service"
	"github.com/bigkaa/gofileserver/internal/storage/filestore"
)

// --- In-memory репозитории для HTTP-тестов ---

type memFileRepo struct {
	docs  map[string]*model.FileMetadata
	order []string
}

func (r *memFileRepo) Save(_ context.Context, f *model.FileMetadata) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
		r.order = append(r.order, f.ID.Hex())
	}
	cp := *f
	r.docs[f.ID.Hex()] = &cp
	return nil
}

func (r *memFileRepo) FindByID(_ context.Context, id string) (*model.FileMetadata, error) {
	f, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFileRepo) FindAll(_ context.Context) ([]*model.FileMetadata, error) {
	result := make([]*model.FileMetadata, 0, len(r.docs))
	for _, id := range r.order {
		if f, ok := r.docs[id]; ok {
			cp := *f
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memFileRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memFileRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	_, ok := r.docs[id]
	return ok, nil
}

type memUserRepo struct {
	docs  map[string]*model.User
	order []string
}

func (r *memUserRepo) Save(_ context.Context, u *model.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
		r.order = append(r.order, u.ID.Hex())
	}
	cp := *u
	r.docs[u.ID.Hex()] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*model.User, error) {
	result := make([]*model.User, 0, len(r.docs))
	for _, id := range r.order {
		if u, ok := r.docs[id]; ok {
			cp := *u
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memUserRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	_, ok := r.docs[id]
	return ok, nil
}

// okChecker — всегда готовая зависимость для health-тестов.
type okChecker struct{}

func (okChecker) CheckReady() (string, string) { return "ok", "" }

// newTestRouter собирает router с in-memory репозиториями и временным FileStore.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	store, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("ошибка создания FileStore: %v", err)
	}

	logger := slog.Default()
	fileSvc := service.NewFileService(&memFileRepo{docs: make(map[string]*model.FileMetadata)}, store, logger)
	userSvc := service.NewUserService(&memUserRepo{docs: make(map[string]*model.User)}, logger)

	return NewRouter(
		handlers.NewFilesHandler(fileSvc, 32<<20, logger),
		handlers.NewUsersHandler(userSvc, logger),
		handlers.NewHealthHandler(okChecker{}),
	)
}

// multipartUpload формирует multipart-запрос POST /api/upload.
func multipartUpload(t *testing.T, filename, contentType, userID string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("ошибка создания part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("ошибка записи part: %v", err)
	}
	if err := mw.WriteField("userId", userID); err != nil {
		t.Fatalf("ошибка записи userId: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("ошибка закрытия writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// doUpload загружает файл и возвращает разобранный ответ.
func doUpload(t *testing.T, router chi.Router, filename, contentType, userID string, content []byte) model.FileMetadata {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, filename, contentType, userID, content))

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: статус %d, тело: %s", rec.Code, rec.Body.String())
	}

	var meta model.FileMetadata
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("upload: некорректный JSON: %v", err)
	}
	return meta
}

// --- Файловые endpoints ---

// TestUploadEndpoint проверяет успешную загрузку и поля ответа.
func TestUploadEndpoint(t *testing.T) {
	router := newTestRouter(t)

	meta := doUpload(t, router, "report.pdf", "application/pdf", "u1", []byte("0123456789"))

	if meta.ID.IsZero() {
		t.Error("в ответе нет id")
	}
	if meta.OriginalFileName != "report.pdf" {
		t.Errorf("originalFileName = %q", meta.OriginalFileName)
	}
	if meta.FileType != "application/pdf" {
		t.Errorf("fileType = %q", meta.FileType)
	}
	if meta.FileSize != 10 {
		t.Errorf("fileSize = %d, ожидался 10", meta.FileSize)
	}
}

// TestUploadEndpoint_EmptyFile проверяет 400 для пустого файла.
func TestUploadEndpoint_EmptyFile(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "empty.txt", "text/plain", "u1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус %d, ожидался 400", rec.Code)
	}
}

// TestUploadEndpoint_MissingUserID проверяет 400 без userId.
func TestUploadEndpoint_MissingUserID(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "a.txt")
	_, _ = part.Write([]byte("data"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус %d, ожидался 400", rec.Code)
	}
}

// TestListEndpoint проверяет список файлов владельца.
func TestListEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doUpload(t, router, "a.txt", "text/plain", "u1", []byte("a"))
	doUpload(t, router, "b.txt", "text/plain", "u2", []byte("b"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files?userId=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d", rec.Code)
	}

	var files []model.FileMetadata
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("файлов %d, ожидался 1", len(files))
	}
	if len(files) > 0 && files[0].OriginalFileName != "a.txt" {
		t.Errorf("originalFileName = %q", files[0].OriginalFileName)
	}
}

// TestDownloadEndpoint проверяет attachment-ответ и байтовую идентичность.
func TestDownloadEndpoint(t *testing.T) {
	router := newTestRouter(t)
	content := []byte("содержимое файла")
	meta := doUpload(t, router, "doc.txt", "text/plain", "u1", content)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/"+meta.ID.Hex()+"?userId=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d, тело: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "doc.txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("содержимое не совпадает")
	}
}

// TestViewEndpoint проверяет inline-ответ с заявленным MIME-типом.
func TestViewEndpoint(t *testing.T) {
	router := newTestRouter(t)
	content := []byte("0123456789")
	meta := doUpload(t, router, "report.pdf", "application/pdf", "u1", content)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/view/"+meta.ID.Hex()+"?userId=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, ожидался application/pdf", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "inline") || !strings.Contains(cd, "report.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("содержимое не совпадает")
	}
}

// TestFileOwnership проверяет 403 для чужого пользователя и 404 для
// несуществующего id на download/view/delete/metadata.
func TestFileOwnership(t *testing.T) {
	router := newTestRouter(t)
	meta := doUpload(t, router, "secret.txt", "text/plain", "u1", []byte("x"))
	missingID := primitive.NewObjectID().Hex()

	endpoints := []struct {
		method, pattern string
	}{
		{http.MethodGet, "/api/download/%s"},
		{http.MethodGet, "/api/view/%s"},
		{http.MethodDelete, "/api/delete/%s"},
		{http.MethodGet, "/api/metadata/%s"},
	}

	for _, ep := range endpoints {
		// Чужой пользователь — 403
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(ep.method, fmt.Sprintf(ep.pattern, meta.ID.Hex())+"?userId=u2", nil))
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s чужим: статус %d, ожидался 403", ep.method, ep.pattern, rec.Code)
		}

		// Несуществующий id — 404
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(ep.method, fmt.Sprintf(ep.pattern, missingID)+"?userId=u1", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s несуществующий: статус %d, ожидался 404", ep.method, ep.pattern, rec.Code)
		}
	}
}

// TestDeleteEndpoint проверяет удаление и повторный запрос метаданных.
func TestDeleteEndpoint(t *testing.T) {
	router := newTestRouter(t)
	meta := doUpload(t, router, "del.txt", "text/plain", "u1", []byte("x"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/delete/"+meta.ID.Hex()+"?userId=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d", rec.Code)
	}
	if rec.Body.String() != "File Deleted" {
		t.Errorf("тело = %q, ожидалось File Deleted", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metadata/"+meta.ID.Hex()+"?userId=u1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metadata после удаления: статус %d, ожидался 404", rec.Code)
	}
}

// --- Endpoints пользователей ---

// createUserHTTP создаёт пользователя через POST /api/users.
func createUserHTTP(t *testing.T, router chi.Router, name, email, password string) model.User {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("create user: статус %d, тело: %s", rec.Code, rec.Body.String())
	}

	var u model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("create user: некорректный JSON: %v", err)
	}
	return u
}

// TestUserCRUDEndpoints проверяет создание, чтение, обновление и удаление.
func TestUserCRUDEndpoints(t *testing.T) {
	router := newTestRouter(t)

	u := createUserHTTP(t, router, "Alice", "alice@example.com", "secret")
	if u.ID.IsZero() {
		t.Fatal("id пользователя не назначен")
	}

	// Get
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/"+u.ID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("get: статус %d", rec.Code)
	}

	// Update: имя и email меняются, пароль — нет
	body, _ := json.Marshal(map[string]string{"name": "Alice Smith", "email": "smith@example.com", "password": "hacked"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/"+u.ID.Hex(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: статус %d", rec.Code)
	}
	var updated model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("update: некорректный JSON: %v", err)
	}
	if updated.Name != "Alice Smith" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Password != "secret" {
		t.Errorf("password = %q, обновление не должно менять пароль", updated.Password)
	}

	// Delete
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/"+u.ID.Hex(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: статус %d", rec.Code)
	}
	if rec.Body.String() != "User Deleted" {
		t.Errorf("тело = %q, ожидалось User Deleted", rec.Body.String())
	}

	// Повторное удаление — 404
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/"+u.ID.Hex(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("повторное delete: статус %d, ожидался 404", rec.Code)
	}
}

// TestUserGet_NotFound проверяет 404 для отсутствующего пользователя.
func TestUserGet_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("статус %d, ожидался 404", rec.Code)
	}
}

// TestAuthenticateEndpoint проверяет 200 с userId и 401 при несовпадении.
func TestAuthenticateEndpoint(t *testing.T) {
	router := newTestRouter(t)
	u := createUserHTTP(t, router, "Alice", "alice@example.com", "secret")

	// Успех
	body, _ := json.Marshal(map[string]string{"email": "alice@example.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/authenticate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус %d, тело: %s", rec.Code, rec.Body.String())
	}
	var resp model.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if resp.UserID != u.ID.Hex() {
		t.Errorf("userId = %q, ожидался %q", resp.UserID, u.ID.Hex())
	}

	// Неверный пароль — 401
	body, _ = json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong"})
	req = httptest.NewRequest(http.MethodPost, "/api/users/authenticate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус %d, ожидался 401", rec.Code)
	}
}

// --- Health ---

// TestHealthEndpoints проверяет liveness, readiness и метрики.
func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: статус %d, ожидался 200", path, rec.Code)
		}
	}
}
