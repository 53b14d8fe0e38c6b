// Package main implements the scheduled Lambda that relays pending
// outbox rows to EventBridge. Request-serving functions never publish
// inline; this relay is what moves committed domain events downstream.
package main

import (
	"context"
	"log"
	"os"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/di"
	"teamcal-backend/infrastructure/persistence/dynamodb"
)

// maxDrainRounds bounds one invocation so a deep backlog spreads across
// ticks instead of running into the Lambda timeout
const maxDrainRounds = 20

var (
	container *di.Container
	processor *dynamodb.OutboxProcessor
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}
	processor = container.OutboxProcessor

	log.Println("Outbox relay initialized")
}

// handler drains the outbox once per scheduled tick
func handler(ctx context.Context, event awsevents.CloudWatchEvent) error {
	if err := processor.Drain(ctx, maxDrainRounds); err != nil {
		container.Logger.Error("Outbox drain failed", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// One-shot mode for draining a real table from a workstation
	log.Println("Running one-shot drain")
	if err := processor.Drain(context.Background(), maxDrainRounds); err != nil {
		log.Fatalf("Drain failed: %v", err)
	}
	container.Shutdown()
}
