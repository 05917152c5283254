package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donutsmp-market-api/internal/cache"
	"donutsmp-market-api/internal/config"
	"donutsmp-market-api/internal/handler"
	"donutsmp-market-api/internal/repository"
	"donutsmp-market-api/internal/router"
	"donutsmp-market-api/internal/service"
	"donutsmp-market-api/internal/upstream"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting DonutSMP market API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize archive repository based on config
	var archiveRepo repository.ArchiveRepository
	switch cfg.Archive.Backend {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteArchiveRepository(cfg.Archive.SQLitePath, cfg.Archive.Name)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite archive: %v", err)
		}
		defer sqliteRepo.Close()
		archiveRepo = sqliteRepo
		log.Println("SQLite archive repository initialized")
	case "mysql":
		mysqlRepo, err := repository.NewMySQLArchiveRepository(cfg.Archive.MySQLDSN(), cfg.Archive.Name)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL archive: %v", err)
		}
		defer mysqlRepo.Close()
		archiveRepo = mysqlRepo
		log.Println("MySQL archive repository initialized")
	default: // file
		fileRepo, err := repository.NewFileArchiveRepository(cfg.Archive.Path)
		if err != nil {
			log.Fatalf("Failed to initialize file archive: %v", err)
		}
		defer fileRepo.Close()
		archiveRepo = fileRepo
		log.Println("File archive repository initialized")
	}

	// Initialize stats cache based on config
	var statsCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
			redisClient.Close()
			statsCache = cache.NewMemoryCache()
		} else {
			statsCache = cache.NewRedisCache(redisClient, cfg.App.Name+":stats:")
			log.Println("Redis stats cache initialized")
		}
	case "off":
		log.Println("Stats cache disabled")
	default: // memory
		statsCache = cache.NewMemoryCache()
		log.Println("Memory stats cache initialized")
	}
	if statsCache != nil {
		defer statsCache.Close()
	}

	// Initialize services
	historyService := service.NewHistoryService(archiveRepo, service.CompactionConfig{
		MaxRecords:    cfg.Archive.MaxRecords,
		RetentionDays: cfg.Archive.RetentionDays,
	})

	upstreamClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	proxyService := service.NewProxyService(upstreamClient, statsCache, cfg.Cache.StatsTTL)

	// Initialize handlers
	healthHandler := handler.New(cfg.Archive.Backend)
	historyHandler := handler.NewHistoryHandler(historyService)
	proxyHandler := handler.NewProxyHandler(proxyService)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		HistoryHandler: historyHandler,
		ProxyHandler:   proxyHandler,
		StaticDir:      cfg.Server.StaticDir,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
