package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"clauseguard/analyzer"
	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/router"
	"clauseguard/config"
	"clauseguard/db"
	_ "clauseguard/docs" // swag will generate this package
	"clauseguard/eventbus"
	"clauseguard/internal/logger"
	"clauseguard/repositories"
	"clauseguard/services"
)

// @title           ClauseGuard API
// @version         1.0
// @description     API for analyzing legal documents and terms of service for risky clauses
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.InitApp()
	logger.InitFromEnv("LOG_LEVEL")
	cfg := config.GetConfig()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to init mongodb: %v", err)
		os.Exit(1)
	}

	llm, err := analyzer.New(ctx, os.Getenv("GEMINI_API_KEY"), cfg.Analyzer)
	if err != nil {
		logger.Log.Errorf("failed to init analyzer: %v", err)
		os.Exit(1)
	}

	jwtMgr, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		logger.Log.Errorf("failed to init jwt manager: %v", err)
		os.Exit(1)
	}

	var bus eventbus.EventBus
	if cfg.Events.Enabled {
		kafkaBus, err := eventbus.NewKafkaEventBus(eventbus.GetBrokers())
		if err != nil {
			logger.Log.Errorf("failed to init event bus: %v", err)
			os.Exit(1)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	}

	analysesRepo := repositories.NewAnalysisRepository(db.Database())
	aiLogsRepo := repositories.NewAILogRepository(db.Database())

	analysisSvc := services.NewAnalysisService(llm, analysesRepo, aiLogsRepo, bus)
	documentSvc := services.NewDocumentService()

	r := router.New(analysisSvc, documentSvc, aiLogsRepo, jwtMgr)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	srv := &http.Server{Addr: addr, Handler: corsHandler.Handler(r)}

	go func() {
		logger.Log.Infof("api server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorf("api server stopped: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Log.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("api server shutdown error: %v", err)
	}
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		logger.Log.Errorf("mongodb disconnect error: %v", err)
	}

	logger.Log.Info("api server stopped")
}

func corsOrigins() []string {
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:5173"}
}
