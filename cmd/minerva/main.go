package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minerva_rss/internal/config"
	"minerva_rss/internal/db"
	"minerva_rss/internal/exporter"
	"minerva_rss/internal/fetcher"
	"minerva_rss/internal/logger"
	"minerva_rss/internal/pipeline"
	"minerva_rss/internal/server"
	"minerva_rss/internal/sheets"

	"google.golang.org/api/option"
)

func main() {
	logger.Init()
	defer logger.Log.Info("Application stopped")

	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Загрузка и валидация конфигурации — до начала любой работы
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}

	// Инициализация БД
	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("DB connection error: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		logger.Log.Fatalf("DB schema error: %v", err)
	}

	// Клиент Google Sheets
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	sheetStore, err := sheets.NewStore(ctx, cfg.SpreadsheetID, cfg.WorksheetName, opts...)
	if err != nil {
		logger.Log.Fatalf("Sheets client error: %v", err)
	}

	// Экспортёр markdown-файлов
	exp, err := exporter.New(cfg.ExportBasePath)
	if err != nil {
		logger.Log.Fatalf("Exporter init error: %v", err)
	}

	pipe := pipeline.New(cfg, fetcher.New(fetcher.NewExtractor()), sheetStore, database, exp)

	// Однократный запуск: без HTTP-сервера, ошибка завершает процесс ненулевым кодом
	if cfg.PollInterval == 0 {
		if err := pipe.Run(ctx); err != nil {
			logger.Log.Fatalf("Pipeline failed: %v", err)
		}
		return
	}

	// Периодический режим
	go pipeline.StartPolling(ctx, pipe, time.Duration(cfg.PollInterval)*time.Minute)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.NewServer(database).Handler(),
	}
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("Forced shutdown: %v", err)
	}
}
