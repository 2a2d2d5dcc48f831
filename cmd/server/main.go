// Package main is the entry point for the Billing Extract API server.
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

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/billing-extract-api/internal/config"
	"github.com/Shimizu-Technology/billing-extract-api/internal/handlers"
	"github.com/Shimizu-Technology/billing-extract-api/internal/registry"
	"github.com/Shimizu-Technology/billing-extract-api/internal/router"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/extraction"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/oracle"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/pdftext"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Billing Extract API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, gin_mode=%s, max_concurrent_jobs=%d, retention=%dm",
		cfg.Port, cfg.GinMode, cfg.MaxConcurrentJobs, cfg.JobRetentionMinutes)

	gin.SetMode(cfg.GinMode)

	// Step 2: Create the Job Registry
	// Jobs live in process memory only — results must be polled within
	// the retention window, and a restart forgets everything.
	reg := registry.New(time.Duration(cfg.JobRetentionMinutes) * time.Minute)
	defer reg.Close()

	// Step 3: Create Services
	oracleClient := oracle.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	if cfg.OpenRouterAPIKey != "" {
		log.Printf("✅ Extraction oracle configured (model: %s)", cfg.OpenRouterModel)
	} else {
		log.Println("⚠️  No OpenRouter API key set (uploads will fail — set OPENROUTER_API_KEY)")
	}

	svc := extraction.New(reg, oracleClient, pdftext.ExtractLines, cfg.MaxConcurrentJobs)

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(reg, svc, cfg.OpenRouterModel, cfg.MaxUploadMB)
	r := router.Setup(h, router.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Step 5: Start the HTTP Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
		// Reads stay generous — uploads arrive over slow links.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Liveness check: http://localhost:%s/", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	// Stop accepting uploads first, then wind down the pipelines that
	// are already running.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}
	svc.Stop()

	log.Println("👋 Server stopped. Goodbye!")
}
