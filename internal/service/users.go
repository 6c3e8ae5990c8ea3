// users.go — сервис управления пользователями и проверка учётных данных.
// Все операции без проверки личности вызывающего. Пароли хранятся
// и сравниваются в открытом виде; аутентификация — линейный скан
// коллекции. Для реального развёртывания это небезопасно, но замена
// на хэширование изменила бы наблюдаемый контракт Authenticate.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/gofileserver/internal/domain/model"
	"github.com/bigkaa/gofileserver/internal/repository"
)

// UserService — сервис управления пользователями.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис управления пользователями.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Create сохраняет пользователя как есть: без проверки уникальности
// email и без требований к паролю.
func (s *UserService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", u.ID.Hex()),
		slog.String("email", u.Email),
	)
	return u, nil
}

// List возвращает всех пользователей.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// GetByID возвращает пользователя по id или ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь с id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

// Update обновляет имя и email пользователя. Пароль этой операцией
// не изменяется никогда.
func (s *UserService) Update(ctx context.Context, id, name, email string) (*model.User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь с id %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}

	existing.Name = name
	existing.Email = email

	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}

	s.logger.Info("Пользователь обновлён", slog.String("user_id", id))
	return existing, nil
}

// Delete удаляет пользователя по id.
// Записи файлов пользователя не затрагиваются.
func (s *UserService) Delete(ctx context.Context, id string) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ошибка проверки пользователя: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: пользователь с id %s", ErrNotFound, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: пользователь с id %s", ErrNotFound, id)
		}
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}

	s.logger.Info("Пользователь удалён", slog.String("user_id", id))
	return nil
}

// Authenticate проверяет учётные данные линейным сканом коллекции:
// берётся первая запись с точным (регистрозависимым) совпадением
// email и пароля. Без rate limiting и без блокировок.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}

	for _, u := range users {
		if u.Email == email && u.Password == password {
			s.logger.Info("Успешная аутентификация", slog.String("user_id", u.ID.Hex()))
			return &model.AuthResponse{
				UserID:  u.ID.Hex(),
				Message: "Authentication successful",
			}, nil
		}
	}

	s.logger.Warn("Неуспешная попытка аутентификации", slog.String("email", email))
	return nil, ErrUnauthorized
}
