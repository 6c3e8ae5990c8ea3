// Пакет model — доменные модели File Server.
package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// FileMetadata — запись о загруженном файле в коллекции file_metadata.
// ID назначается MongoDB при вставке документа.
type FileMetadata struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	// Имя файла, переданное клиентом при загрузке (не валидируется)
	OriginalFileName string `bson:"original_file_name" json:"originalFileName"`
	// Имя файла на диске: <uuid>_<originalFileName>
	StoredFileName string `bson:"stored_file_name" json:"storedFileName"`
	// MIME-тип, заявленный клиентом (не определяется по содержимому)
	FileType string `bson:"file_type" json:"fileType"`
	// Размер файла в байтах по данным транспорта загрузки
	FileSize int64 `bson:"file_size" json:"fileSize"`
	// Абсолютный путь к файлу на диске
	FilePath string `bson:"file_path" json:"filePath"`
	// Идентификатор владельца; целостность с коллекцией users не проверяется
	UserID string `bson:"user_id" json:"userId"`
}
