//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"teamcal-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideUserStore,
	ProvideTeamStore,
	ProvideMemberStore,
	ProvideEventStore,
	ProvideOutboxStore,
	ProvideConnectionStore,
	ProvideEventPublisher,
	ProvideCache,
	ProvideMetrics,
	ProvideTracer,
	ProvideDistributedRateLimiter,
	ProvideJWTValidator,
	ProvideJWTGenerator,
	ProvideHookManager,
	ProvideAuthorizer,
	ProvideUserService,
	ProvideTeamService,
	ProvideEventService,
	ProvideCalendarService,
	ProvideOutboxProcessor,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
