package di

import (
	"context"

	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/application/services"
	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/persistence/dynamodb"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/extensions"
	"teamcal-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DynamoDBClient    *awsdynamodb.Client
	EventBridgeClient *awseventbridge.Client
	CloudWatchClient  *awscloudwatch.Client

	Users       ports.UserStore
	Teams       ports.TeamStore
	Members     ports.MemberStore
	Events      ports.EventStore
	Outbox      ports.DomainEventStore
	Connections ports.ConnectionStore

	Publisher   ports.EventPublisher
	Cache       ports.Cache
	Metrics     *observability.Metrics
	Tracer      *observability.Tracer
	RateLimiter *auth.DistributedRateLimiter
	Tokens      *auth.JWTValidator
	TokenIssuer *auth.JWTGenerator
	Hooks       *extensions.HookManager

	Authorizer      *services.Authorizer
	UserService     *services.UserService
	TeamService     *services.TeamService
	EventService    *services.EventService
	CalendarService *services.CalendarService

	OutboxProcessor *dynamodb.OutboxProcessor

	outboxStarted bool
}

// StartBackground launches the long-running workers. Lambda entrypoints
// skip this; the outbox is drained per invocation instead.
func (c *Container) StartBackground(ctx context.Context) {
	c.OutboxProcessor.Start(ctx)
	c.outboxStarted = true
}

// Shutdown stops background workers and flushes the logger
func (c *Container) Shutdown() {
	if c.outboxStarted {
		c.OutboxProcessor.Stop()
	}
	_ = c.Logger.Sync()
}
