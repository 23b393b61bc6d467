package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sufganiot/internal/config"
	"sufganiot/internal/db"
	"sufganiot/internal/middleware"
	"sufganiot/internal/router"
	"sufganiot/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	cfg := config.Load()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	conn, err := db.Open(cfg.DatabaseURL, gin.Mode() == gin.DebugMode)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	svc, err := services.New(conn, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 登录限流，闲置 IP 定期清理
	loginLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.LoginRateLimitRPS), cfg.LoginRateLimitBurst)
	loginLimiter.StartSweeper(ctx, 5*time.Minute, 30*time.Minute)

	r, err := router.New(svc, cfg, loginLimiter)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Channel to listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Sufganiot server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	// 等待异步活动日志写完再关库
	svc.Activity.Wait()
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exiting")
}
