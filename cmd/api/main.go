package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/di"
	"teamcal-backend/infrastructure/persistence/dynamodb"
	"teamcal-backend/interfaces/http/rest"
	"teamcal-backend/interfaces/http/rest/ops"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Shutdown()

	// Refuse to serve against a table whose key layout the repositories
	// cannot use
	schemaCtx, schemaCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := dynamodb.VerifyTableSchema(schemaCtx, container.DynamoDBClient, cfg.DynamoDBTable, container.Logger); err != nil {
		schemaCancel()
		container.Logger.Fatal("Table schema verification failed", zap.Error(err))
	}
	schemaCancel()

	// The outbox relay runs alongside the server; Lambda deployments
	// drain the outbox per invocation instead
	container.StartBackground(ctx)

	handler := rest.NewRouter(container).Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	opsSrv := &http.Server{
		Addr:         cfg.OpsAddress,
		Handler:      ops.NewRouter(container.DynamoDBClient, cfg.DynamoDBTable, container.Logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	go func() {
		container.Logger.Info("Starting ops server", zap.String("address", cfg.OpsAddress))

		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Ops server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Ops server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}
