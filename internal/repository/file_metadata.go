package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bigkaa/gofileserver/internal/domain/model"
)

// fileMetadataRepo — реализация FileMetadataRepository поверх MongoDB.
type fileMetadataRepo struct {
	coll *mongo.Collection
}

// NewFileMetadataRepository создаёт репозиторий коллекции file_metadata.
func NewFileMetadataRepository(coll *mongo.Collection) FileMetadataRepository {
	return &fileMetadataRepo{coll: coll}
}

func (r *fileMetadataRepo) Save(ctx context.Context, f *model.FileMetadata) error {
	// Новая запись — id назначает MongoDB
	if f.ID.IsZero() {
		res, err := r.coll.InsertOne(ctx, f)
		if err != nil {
			return fmt.Errorf("ошибка вставки записи файла: %w", err)
		}
		f.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	// Существующая запись — полная замена документа
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, f); err != nil {
		return fmt.Errorf("ошибка обновления записи файла: %w", err)
	}
	return nil
}

func (r *fileMetadataRepo) FindByID(ctx context.Context, id string) (*model.FileMetadata, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Некорректный id эквивалентен отсутствующей записи
		return nil, ErrNotFound
	}

	f := &model.FileMetadata{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи файла: %w", err)
	}
	return f, nil
}

func (r *fileMetadataRepo) FindAll(ctx context.Context) ([]*model.FileMetadata, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}

	var result []*model.FileMetadata
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения курсора файлов: %w", err)
	}
	return result, nil
}

func (r *fileMetadataRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ошибка удаления записи файла: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileMetadataRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования записи файла: %w", err)
	}
	return count > 0, nil
}
