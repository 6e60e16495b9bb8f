package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-market/internal/config"
	"github.com/ignatzorin/freelance-market/internal/db"
	"github.com/ignatzorin/freelance-market/internal/goroutine"
	httpHandlers "github.com/ignatzorin/freelance-market/internal/http/handlers"
	httpRouter "github.com/ignatzorin/freelance-market/internal/http/router"
	"github.com/ignatzorin/freelance-market/internal/logger"
	"github.com/ignatzorin/freelance-market/internal/repository"
	"github.com/ignatzorin/freelance-market/internal/service"
	"github.com/ignatzorin/freelance-market/internal/storage"
	"github.com/ignatzorin/freelance-market/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo)
	notificationService.SetHub(hub)
	userService := service.NewUserService(userRepo)
	cacheService := service.NewCacheService()
	projectService := service.NewProjectService(projectRepo, userRepo, submissionRepo, notificationService)
	proposalService := service.NewProposalService(proposalRepo, projectRepo, userRepo, notificationService)

	// Политика автоприёма и сервис предложений зависят друг от друга,
	// поэтому связываются через сеттеры после создания.
	autoAcceptPolicy := service.NewAutoAcceptPolicy(proposalRepo, projectRepo)
	autoAcceptPolicy.SetAcceptor(proposalService)
	proposalService.SetAutoAccept(autoAcceptPolicy)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userService)
	projectHandler := httpHandlers.NewProjectHandler(projectService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	statsHandler := httpHandlers.NewStatsHandler(projectService, proposalService, cacheService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, fileStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		projectHandler,
		proposalHandler,
		notificationHandler,
		statsHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
