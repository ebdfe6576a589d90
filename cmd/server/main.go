package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/kp-backend/internal/config"
	"github.com/ignatzorin/kp-backend/internal/db"
	httpHandlers "github.com/ignatzorin/kp-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/kp-backend/internal/http/router"
	"github.com/ignatzorin/kp-backend/internal/logger"
	"github.com/ignatzorin/kp-backend/internal/pdf"
	"github.com/ignatzorin/kp-backend/internal/repository"
	"github.com/ignatzorin/kp-backend/internal/service"
	"github.com/ignatzorin/kp-backend/internal/storage"
	"github.com/ignatzorin/kp-backend/internal/ws"
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
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.UploadsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории и бизнес-логика.
	proposalRepo := repository.NewProposalRepository(dbConn)
	proposalService := service.NewProposalService(proposalRepo)
	authService := service.NewAuthService(cfg.AdminPasswordHash, tokenManager)
	renderer := pdf.NewRenderer(cfg.FontsPath, cfg.UploadsPath, cfg.Currency, cfg.ImageFetchTimeout)

	// События просмотров для дашборда.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService, renderer)
	publicHandler := httpHandlers.NewPublicHandler(proposalService, hub)
	uploadHandler := httpHandlers.NewUploadHandler(imageStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, proposalHandler, publicHandler, uploadHandler, wsHandler, healthHandler, tokenManager)

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
