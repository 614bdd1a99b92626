package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flavorlab-enrichment/internal/api"
	"flavorlab-enrichment/internal/core/batch"
	"flavorlab-enrichment/internal/core/cache"
	"flavorlab-enrichment/internal/infrastructure/config"
	"flavorlab-enrichment/internal/infrastructure/output"
	"flavorlab-enrichment/internal/infrastructure/reference"
	"flavorlab-enrichment/internal/infrastructure/storage"
	"flavorlab-enrichment/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("db_path", cfg.Storage.DBPath),
		zap.String("ingredients_file", cfg.Storage.IngredientsFile),
		zap.String("compounds", cfg.Reference.Compounds),
		zap.String("vitamins", cfg.Reference.Vitamins),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	ingredients, err := storage.Open(cfg.Storage)
	if err != nil {
		common.LogFatal("Failed to open ingredient source", zap.Error(err))
	}
	defer ingredients.Close()

	compounds, err := reference.NewSource(cfg.Reference.Compounds, cfg.Reference.HTTPTimeout)
	if err != nil {
		common.LogFatal("Invalid compound catalogue", zap.Error(err))
	}
	vitamins, err := reference.NewSource(cfg.Reference.Vitamins, cfg.Reference.HTTPTimeout)
	if err != nil {
		common.LogFatal("Invalid vitamin catalogue", zap.Error(err))
	}

	opts := batch.Options{
		Ingredients: ingredients,
		Compounds:   compounds,
		Vitamins:    vitamins,
		Workers:     cfg.Pipeline.Workers,
	}
	if cfg.Output.Enabled {
		opts.Writer = output.NewWriter(cfg.Output.Dir)
	}

	store, err := cache.NewStore(&cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		opts.Cache = store
		defer store.Close()
	}

	service := batch.NewService(opts)

	// 參考資料載入失敗時仍啟動服務，/ready 會回報未就緒
	if _, err := service.LoadReferences(context.Background()); err != nil {
		common.LogError("Failed to load references", zap.Error(err))
	}

	router := api.SetupRouter(cfg, service)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
