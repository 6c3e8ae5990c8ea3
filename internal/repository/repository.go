// Пакет repository — слой доступа к данным MongoDB.
// Узкие интерфейсы документных репозиториев: Save, FindByID, FindAll,
// Delete, ExistsByID. Любой документный или key-value backend может
// реализовать их; здесь реализация на mongo-driver.
package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/gofileserver/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
)

// FileMetadataRepository — CRUD коллекции file_metadata.
type FileMetadataRepository interface {
	// Save вставляет новую запись (id пустой) или заменяет существующую.
	// При вставке id назначается хранилищем и записывается в f.
	Save(ctx context.Context, f *model.FileMetadata) error
	// FindByID возвращает запись по id или ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.FileMetadata, error)
	// FindAll возвращает все записи коллекции.
	FindAll(ctx context.Context) ([]*model.FileMetadata, error)
	// Delete удаляет запись по id. Отсутствующий id — ErrNotFound.
	Delete(ctx context.Context, id string) error
	// ExistsByID проверяет существование записи.
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// UserRepository — CRUD коллекции users.
type UserRepository interface {
	Save(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}
