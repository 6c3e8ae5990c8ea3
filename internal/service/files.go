// Пакет service — бизнес-логика File Server.
// files.go — сервис файловых операций: загрузка, список, скачивание,
// просмотр, удаление, метаданные. Доступ к чужим файлам закрыт
// единственной проверкой — сравнением владельца записи с userId запроса.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofileserver/internal/domain/model"
	"github.com/bigkaa/gofileserver/internal/repository"
	"github.com/bigkaa/gofileserver/internal/storage/filestore"
)

// Prometheus-метрики файловых операций.
var (
	fileOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_file_operations_total",
		Help: "Количество файловых операций по типу и результату.",
	}, []string{"operation", "status"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_upload_bytes_total",
		Help: "Общее количество загруженных байт.",
	})
)

// FileService — сервис файловых операций.
type FileService struct {
	repo   repository.FileMetadataRepository
	store  *filestore.FileStore
	logger *slog.Logger
}

// NewFileService создаёт сервис файловых операций.
func NewFileService(repo repository.FileMetadataRepository, store *filestore.FileStore, logger *slog.Logger) *FileService {
	return &FileService{
		repo:   repo,
		store:  store,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// Upload сохраняет содержимое файла на диск и регистрирует запись метаданных.
//
// Поток:
//  1. Валидация: пустой файл отклоняется
//  2. Запись содержимого на диск под именем <uuid>_<имя>
//  3. Сохранение записи в хранилище документов
//
// Шаги 2 и 3 не транзакционны: при ошибке сохранения записи файл
// на диске остаётся без записи и не подчищается.
func (s *FileService) Upload(ctx context.Context, content io.Reader, originalFilename, fileType string, size int64, userID string) (*model.FileMetadata, error) {
	if size <= 0 {
		fileOperationsTotal.WithLabelValues("upload", "validation_error").Inc()
		return nil, fmt.Errorf("%w: выберите файл для загрузки", ErrValidation)
	}

	saved, err := s.store.SaveFile(content, originalFilename)
	if err != nil {
		fileOperationsTotal.WithLabelValues("upload", "io_error").Inc()
		return nil, fmt.Errorf("не удалось сохранить файл %s: %w", originalFilename, err)
	}

	meta := &model.FileMetadata{
		OriginalFileName: originalFilename,
		StoredFileName:   saved.StoredFileName,
		FileType:         fileType,
		FileSize:         size,
		FilePath:         saved.FullPath,
		UserID:           userID,
	}

	if err := s.repo.Save(ctx, meta); err != nil {
		fileOperationsTotal.WithLabelValues("upload", "error").Inc()
		// Файл уже записан на диск; запись не создана — файл осиротел
		s.logger.Error("Запись метаданных не сохранена, файл на диске осиротел",
			slog.String("stored_file_name", saved.StoredFileName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("ошибка сохранения метаданных файла: %w", err)
	}

	fileOperationsTotal.WithLabelValues("upload", "success").Inc()
	uploadBytesTotal.Add(float64(saved.Size))

	s.logger.Info("Файл загружен",
		slog.String("file_id", meta.ID.Hex()),
		slog.String("filename", originalFilename),
		slog.Int64("size", size),
		slog.String("user_id", userID),
	)

	return meta, nil
}

// List возвращает записи файлов, принадлежащие userID.
// Полный скан коллекции с фильтрацией по владельцу.
func (s *FileService) List(ctx context.Context, userID string) ([]*model.FileMetadata, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}

	result := make([]*model.FileMetadata, 0, len(all))
	for _, f := range all {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	return result, nil
}

// Download открывает содержимое файла для скачивания.
// Возвращает io.ReadCloser и запись метаданных. Вызывающий код обязан
// закрыть ReadCloser.
func (s *FileService) Download(ctx context.Context, id, userID string) (io.ReadCloser, *model.FileMetadata, error) {
	meta, err := s.validateOwnership(ctx, id, userID)
	if err != nil {
		fileOperationsTotal.WithLabelValues("download", "denied").Inc()
		return nil, nil, err
	}

	// Запись есть, файла на диске нет — расхождение не ремонтируется
	if !s.store.Exists(meta.FilePath) {
		fileOperationsTotal.WithLabelValues("download", "missing_on_disk").Inc()
		return nil, nil, fmt.Errorf("%w: файл %s отсутствует на диске", ErrNotFound, meta.OriginalFileName)
	}

	f, err := s.store.Open(meta.FilePath)
	if err != nil {
		fileOperationsTotal.WithLabelValues("download", "io_error").Inc()
		return nil, nil, fmt.Errorf("ошибка открытия файла %s: %w", meta.OriginalFileName, err)
	}

	fileOperationsTotal.WithLabelValues("download", "success").Inc()
	return f, meta, nil
}

// View читает всё содержимое файла в память для inline-отображения.
// Ограничения на размер нет.
func (s *FileService) View(ctx context.Context, id, userID string) (*model.FileMetadata, []byte, error) {
	meta, err := s.validateOwnership(ctx, id, userID)
	if err != nil {
		fileOperationsTotal.WithLabelValues("view", "denied").Inc()
		return nil, nil, err
	}

	if !s.store.Exists(meta.FilePath) {
		fileOperationsTotal.WithLabelValues("view", "missing_on_disk").Inc()
		return nil, nil, fmt.Errorf("%w: файл %s отсутствует на диске", ErrNotFound, meta.OriginalFileName)
	}

	content, err := s.store.ReadAll(meta.FilePath)
	if err != nil {
		fileOperationsTotal.WithLabelValues("view", "io_error").Inc()
		return nil, nil, fmt.Errorf("ошибка чтения файла %s: %w", meta.OriginalFileName, err)
	}

	fileOperationsTotal.WithLabelValues("view", "success").Inc()
	return meta, content, nil
}

// Delete удаляет запись метаданных, затем файл с диска.
// Два независимых шага без транзакции: если удаление файла с диска
// не удалось, запись уже удалена — расхождение только логируется.
func (s *FileService) Delete(ctx context.Context, id, userID string) error {
	meta, err := s.validateOwnership(ctx, id, userID)
	if err != nil {
		fileOperationsTotal.WithLabelValues("delete", "denied").Inc()
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Конкурентное удаление: второй запрос наблюдает NotFound
			fileOperationsTotal.WithLabelValues("delete", "not_found").Inc()
			return fmt.Errorf("%w: файл с id %s", ErrNotFound, id)
		}
		fileOperationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("ошибка удаления записи файла: %w", err)
	}

	if err := s.store.Delete(meta.FilePath); err != nil {
		s.logger.Warn("Запись удалена, но файл на диске удалить не удалось",
			slog.String("file_id", id),
			slog.String("file_path", meta.FilePath),
			slog.String("error", err.Error()),
		)
	}

	fileOperationsTotal.WithLabelValues("delete", "success").Inc()

	s.logger.Info("Файл удалён",
		slog.String("file_id", id),
		slog.String("user_id", userID),
	)
	return nil
}

// GetMetadata возвращает запись метаданных без доступа к содержимому.
func (s *FileService) GetMetadata(ctx context.Context, id, userID string) (*model.FileMetadata, error) {
	return s.validateOwnership(ctx, id, userID)
}

// Share возвращает запись метаданных файла для передачи другому
// пользователю. Семантика идентична GetMetadata: проверка владельца
// и выдача записи.
func (s *FileService) Share(ctx context.Context, id, userID string) (*model.FileMetadata, error) {
	return s.validateOwnership(ctx, id, userID)
}

// validateOwnership — общая проверка доступа для download/view/delete/metadata:
// запись ищется по id; отсутствие — ErrNotFound, чужой владелец — ErrForbidden.
func (s *FileService) validateOwnership(ctx context.Context, id, userID string) (*model.FileMetadata, error) {
	meta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: файл с id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка поиска записи файла: %w", err)
	}

	if meta.UserID != userID {
		return nil, fmt.Errorf("%w: файл принадлежит другому пользователю", ErrForbidden)
	}

	return meta, nil
}
