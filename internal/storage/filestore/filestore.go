// Пакет filestore — операции с физическими файлами на диске.
// Запись содержимого под сгенерированным именем, чтение, удаление.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore — управление физическими файлами в корневой директории хранения.
type FileStore struct {
	// uploadDir — абсолютный корень хранения файлов (FS_UPLOAD_DIR)
	uploadDir string
}

// SaveResult — результат сохранения файла на диск.
type SaveResult struct {
	// StoredFileName — имя файла на диске: <uuid>_<originalFilename>
	StoredFileName string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — размер записанных данных в байтах
	Size int64
}

// New создаёт FileStore. Директория хранения создаётся, если не существует.
func New(uploadDir string) (*FileStore, error) {
	abs, err := filepath.Abs(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("некорректный путь директории хранения %s: %w", uploadDir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию хранения %s: %w", abs, err)
	}

	return &FileStore{uploadDir: abs}, nil
}

// UploadDir возвращает абсолютный корень хранения.
func (fs *FileStore) UploadDir() string {
	return fs.uploadDir
}

// SaveFile записывает данные из reader на диск под именем <uuid>_<originalFilename>.
// Существующий файл по этому пути перезаписывается. Уникальность имени
// обеспечивается только случайным токеном, явной проверки коллизий нет.
//
// Паттерн: temp файл → запись → fsync → atomic rename.
// При ошибке temp файл удаляется.
func (fs *FileStore) SaveFile(reader io.Reader, originalFilename string) (*SaveResult, error) {
	storedName := GenerateStoredName(originalFilename)
	fullPath := filepath.Join(fs.uploadDir, storedName)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename; перезаписывает существующий файл по этому пути
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		StoredFileName: storedName,
		FullPath:       fullPath,
		Size:           size,
	}, nil
}

// Open открывает файл по абсолютному пути и возвращает его для чтения.
// Вызывающий код обязан закрыть файл.
func (fs *FileStore) Open(fullPath string) (*os.File, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", fullPath, err)
	}
	return f, nil
}

// ReadAll читает всё содержимое файла в память.
// Ограничения на размер нет — файл буферизуется целиком.
func (fs *FileStore) ReadAll(fullPath string) ([]byte, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", fullPath, err)
	}
	return data, nil
}

// Delete удаляет файл с диска. Возвращает nil, если файл уже не существует.
func (fs *FileStore) Delete(fullPath string) error {
	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла %s: %w", fullPath, err)
	}
	return nil
}

// Exists проверяет существование файла на диске.
func (fs *FileStore) Exists(fullPath string) bool {
	_, err := os.Stat(fullPath)
	return err == nil
}

// GenerateStoredName формирует имя файла на диске: <uuid>_<originalFilename>.
// Оригинальное имя не валидируется и не экранируется.
func GenerateStoredName(originalFilename string) string {
	return uuid.New().String() + "_" + originalFilename
}
