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

// userRepo — реализация UserRepository поверх MongoDB.
type userRepo struct {
	coll *mongo.Collection
}

// NewUserRepository создаёт репозиторий коллекции users.
func NewUserRepository(coll *mongo.Collection) UserRepository {
	return &userRepo{coll: coll}
}

func (r *userRepo) Save(ctx context.Context, u *model.User) error {
	if u.ID.IsZero() {
		res, err := r.coll.InsertOne(ctx, u)
		if err != nil {
			return fmt.Errorf("ошибка вставки пользователя: %w", err)
		}
		u.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u); err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	u := &model.User{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}

	var result []*model.User
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("ошибка чтения курсора пользователей: %w", err)
	}
	return result, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования пользователя: %w", err)
	}
	return count > 0, nil
}
