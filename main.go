package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game_collection/config"
	"game_collection/handlers"
	"game_collection/logging"
	"game_collection/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: game-collection [--data-dir D] [--static-dir D] [port]")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Directories and the document are created once for the process lifetime
	images := store.NewImageStore(cfg.ImagesDir())
	if err := images.Init(); err != nil {
		logger.Fatal("Failed to create image directory", zap.Error(err))
	}
	records := store.NewRecordStore(cfg.GamesFile(), images)
	if err := records.Init(); err != nil {
		logger.Fatal("Failed to initialize game document", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(records, images, cfg.StaticDir, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Game collection server started",
			zap.String("url", "http://"+cfg.Addr()),
			zap.String("data_dir", cfg.DataDir),
			zap.String("games_file", cfg.GamesFile()),
			zap.String("images_dir", cfg.ImagesDir()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}
