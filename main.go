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

	"exampulse/internal/config"
	"exampulse/internal/container"
	"exampulse/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the store in the background; requests that arrive first wait on the same load
	go func() {
		if _, err := appContainer.Store.Load(ctx); err != nil {
			log.Printf("Initial load failed: %v (POST /api/reload to retry)", err)
		}
	}()

	// Start pprof and metrics server
	if appConfig.Profiling.Enabled {
		ops := ui.OpsServer(ui.OpsConfig{
			Port:    appConfig.Profiling.Port,
			Metrics: appContainer.Metrics,
			Store:   appContainer.Store,
		})
		go func() {
			log.Printf("Ops server (pprof, metrics) starting on :%s", appConfig.Profiling.Port)
			log.Printf("View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Ops server failed: %v", err)
			}
		}()
		defer ops.Close()
	}

	server := ui.NewServer(ui.Deps{
		Dashboards: appContainer.Dashboards,
		Metrics:    appContainer.Metrics,
		Logger:     appContainer.Logger,
		Precision:  appConfig.Display.Precision,
	})
	httpServer := server.HTTPServer(":" + appConfig.Server.Port)

	go func() {
		log.Printf("Starting exampulse server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
