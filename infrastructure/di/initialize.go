//go:build !wireinject
// +build !wireinject

package di

import (
	"context"
	"fmt"

	"teamcal-backend/infrastructure/config"
)

// InitializeContainer builds the full dependency graph. Construction is
// ordered clients, stores, services; nothing here touches the network,
// so a bad environment fails fast and cheap.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	c.Logger = logger

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	c.DynamoDBClient = ProvideDynamoDBClient(awsCfg)
	c.EventBridgeClient = ProvideEventBridgeClient(awsCfg)
	c.CloudWatchClient = ProvideCloudWatchClient(awsCfg)

	domainCfg := ProvideDomainConfig(cfg)
	c.Users = ProvideUserStore(c.DynamoDBClient, cfg, logger)
	c.Teams = ProvideTeamStore(c.DynamoDBClient, cfg, logger)
	c.Members = ProvideMemberStore(c.DynamoDBClient, cfg, logger)
	c.Events = ProvideEventStore(c.DynamoDBClient, cfg, domainCfg, logger)
	c.Outbox = ProvideOutboxStore(c.DynamoDBClient, cfg, logger)
	c.Connections = ProvideConnectionStore(c.DynamoDBClient, cfg, logger)

	c.Publisher = ProvideEventPublisher(c.EventBridgeClient, cfg, logger)
	c.Cache = ProvideCache()
	c.Metrics = ProvideMetrics(c.CloudWatchClient, cfg)
	c.Tracer = ProvideTracer()
	if cfg.DistributedLimits {
		c.RateLimiter = ProvideDistributedRateLimiter(c.DynamoDBClient, cfg)
	}

	c.Tokens, err = ProvideJWTValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build token validator: %w", err)
	}
	c.TokenIssuer, err = ProvideJWTGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build token issuer: %w", err)
	}

	c.Hooks = ProvideHookManager(c.Metrics, logger)
	c.Authorizer = ProvideAuthorizer(c.Members, c.Cache, logger)
	c.UserService = ProvideUserService(c.Users, c.Outbox, domainCfg, logger)
	c.TeamService = ProvideTeamService(c.Teams, c.Members, c.Users, c.Outbox, c.Authorizer, domainCfg, logger)
	c.EventService = ProvideEventService(c.Events, c.Outbox, c.Authorizer, domainCfg, logger)
	c.CalendarService = ProvideCalendarService(c.Events, c.Members, c.Authorizer, logger)

	c.OutboxProcessor = ProvideOutboxProcessor(c.Outbox, c.Publisher, logger)

	return c, nil
}
