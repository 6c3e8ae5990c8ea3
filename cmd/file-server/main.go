// Точка входа File Server — сервиса хранения пользовательских файлов.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/gofileserver/internal/api/handlers"
	"github.com/bigkaa/gofileserver/internal/api/middleware"
	"github.com/bigkaa/gofileserver/internal/config"
	"github.com/bigkaa/gofileserver/internal/database"
	"github.com/bigkaa/gofileserver/internal/repository"
	"github.com/bigkaa/gofileserver/internal/server"
	"github.com/bigkaa/gofileserver/internal/service"
	"github.com/bigkaa/gofileserver/internal/storage/filestore"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("File Server запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upload_dir", cfg.UploadDir),
		slog.String("mongo_database", cfg.MongoDatabase),
	)

	// --- Инициализация компонентов ---

	// 1. Подключение к MongoDB
	ctx := context.Background()
	client, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if dErr := client.Disconnect(ctx); dErr != nil {
			logger.Warn("Ошибка отключения от MongoDB", slog.String("error", dErr.Error()))
		}
	}()

	db := client.Database(cfg.MongoDatabase)

	// 2. Репозитории
	fileRepo := repository.NewFileMetadataRepository(db.Collection(database.CollectionFileMetadata))
	userRepo := repository.NewUserRepository(db.Collection(database.CollectionUsers))

	// 3. Файловое хранилище
	store, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Сервисы
	fileSvc := service.NewFileService(fileRepo, store, logger)
	userSvc := service.NewUserService(userRepo, logger)

	// 5. Handlers
	filesHandler := handlers.NewFilesHandler(fileSvc, cfg.MaxUploadMemory, logger)
	usersHandler := handlers.NewUsersHandler(userSvc, logger)
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(client))

	// 6. Router с middleware логирования и метрик
	router := server.NewRouter(
		filesHandler,
		usersHandler,
		healthHandler,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
	)

	// 7. Создание и запуск HTTP-сервера (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("File Server остановлен")
}
