package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/application/services"
	domaincfg "teamcal-backend/domain/config"
	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/messaging/eventbridge"
	"teamcal-backend/infrastructure/persistence/dynamodb"
	"teamcal-backend/infrastructure/persistence/memory"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/extensions"
	"teamcal-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig picks the domain rule set for the environment.
// Development loosens the calendar window cap for seeding and testing.
func ProvideDomainConfig(cfg *config.Config) *domaincfg.DomainConfig {
	if cfg.IsDevelopment() {
		return domaincfg.DevelopmentDomainConfig()
	}
	return domaincfg.DefaultDomainConfig()
}

// ProvideUserStore creates the user repository
func ProvideUserStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserStore {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideTeamStore creates the team repository
func ProvideTeamStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TeamStore {
	return dynamodb.NewTeamRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMemberStore creates the membership repository
func ProvideMemberStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MemberStore {
	return dynamodb.NewMemberRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventStore creates the calendar event repository
func ProvideEventStore(client *awsdynamodb.Client, cfg *config.Config, domainCfg *domaincfg.DomainConfig, logger *zap.Logger) ports.EventStore {
	return dynamodb.NewEventRepository(client, cfg.DynamoDBTable, domainCfg, logger)
}

// ProvideOutboxStore creates the transactional event log
func ProvideOutboxStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DomainEventStore {
	return dynamodb.NewOutboxStore(client, cfg.DynamoDBTable, logger)
}

// ProvideConnectionStore creates the live connection registry
func ProvideConnectionStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionStore {
	return dynamodb.NewConnectionStore(client, cfg.ConnectionsTable, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCache creates the in-process cache shared by the authorizer.
// Each instance caches independently; staleness across instances is
// bounded by the membership TTL.
func ProvideCache() ports.Cache {
	return memory.NewCache()
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("Teamcal/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("teamcal-backend")
}

// ProvideDistributedRateLimiter creates a table-backed rate limiter.
// Counters live in the main table under RATELIMIT# keys.
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedIPRateLimiter(client, cfg.DynamoDBTable, cfg.RateLimitPerMinute)
}

// ProvideJWTValidator creates the token validator. Tokens carry identity
// only; roles always come from membership rows.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "local-development-secret"
	}

	jwtCfg := auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	}
	if cfg.JWTAudience != "" {
		jwtCfg.Audience = []string{cfg.JWTAudience}
	}
	return auth.NewJWTValidator(jwtCfg)
}

// ProvideJWTGenerator creates the token issuer used by the refresh
// endpoint and by development token minting
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "local-development-secret"
	}

	genCfg := auth.JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
		ExpiryTime:    24 * time.Hour,
	}
	if cfg.JWTAudience != "" {
		genCfg.Audience = []string{cfg.JWTAudience}
	}
	return auth.NewJWTGenerator(genCfg)
}

// ProvideAuthorizer creates the membership authorizer
func ProvideAuthorizer(members ports.MemberStore, cache ports.Cache, logger *zap.Logger) *services.Authorizer {
	return services.NewAuthorizer(members, cache, logger)
}

// ProvideUserService creates the user service
func ProvideUserService(users ports.UserStore, outbox ports.DomainEventStore, domainCfg *domaincfg.DomainConfig, logger *zap.Logger) *services.UserService {
	return services.NewUserService(users, outbox, domainCfg, logger)
}

// ProvideTeamService creates the team service
func ProvideTeamService(
	teams ports.TeamStore,
	members ports.MemberStore,
	users ports.UserStore,
	outbox ports.DomainEventStore,
	authorizer *services.Authorizer,
	domainCfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.TeamService {
	return services.NewTeamService(teams, members, users, outbox, authorizer, domainCfg, logger)
}

// ProvideEventService creates the calendar event service
func ProvideEventService(
	events ports.EventStore,
	outbox ports.DomainEventStore,
	authorizer *services.Authorizer,
	domainCfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) *services.EventService {
	return services.NewEventService(events, outbox, authorizer, domainCfg, logger)
}

// ProvideCalendarService creates the calendar view service
func ProvideCalendarService(
	events ports.EventStore,
	members ports.MemberStore,
	authorizer *services.Authorizer,
	logger *zap.Logger,
) *services.CalendarService {
	return services.NewCalendarService(events, members, authorizer, logger)
}

// ProvideOutboxProcessor creates the background outbox drainer
func ProvideOutboxProcessor(outbox ports.DomainEventStore, publisher ports.EventPublisher, logger *zap.Logger) *dynamodb.OutboxProcessor {
	return dynamodb.NewOutboxProcessor(outbox, publisher, logger)
}

// ProvideHookManager creates the lifecycle hook registry with the stock
// metrics hooks attached
func ProvideHookManager(metrics *observability.Metrics, logger *zap.Logger) *extensions.HookManager {
	hooks := extensions.NewHookManager()
	registerMetricsHooks(hooks, metrics)
	registerAuditHooks(hooks, logger)
	return hooks
}

// registerMetricsHooks counts domain operations as business metrics
func registerMetricsHooks(hooks *extensions.HookManager, metrics *observability.Metrics) {
	count := func(name string) extensions.Hook {
		return func(ctx context.Context, data extensions.HookData) error {
			metrics.RecordBusinessMetric(ctx, name, 1, "Count", map[string]string{
				"TeamID": data.TeamID,
			})
			return nil
		}
	}

	hooks.Register(extensions.HookAfterEventCreate, count("EventsCreated"))
	hooks.Register(extensions.HookAfterEventUpdate, count("EventsUpdated"))
	hooks.Register(extensions.HookAfterEventDelete, count("EventsDeleted"))
	hooks.Register(extensions.HookAfterMemberInvite, count("MembersInvited"))
	hooks.Register(extensions.HookAfterTeamCreate, count("TeamsCreated"))
}

// registerAuditHooks logs membership changes, which reviewers ask about
// far more often than event edits
func registerAuditHooks(hooks *extensions.HookManager, logger *zap.Logger) {
	audit := func(action string) extensions.Hook {
		return func(ctx context.Context, data extensions.HookData) error {
			logger.Info("Audit",
				zap.String("action", action),
				zap.String("team_id", data.TeamID),
				zap.String("entity_id", data.EntityID),
				zap.String("actor_id", data.ActorID),
			)
			return nil
		}
	}

	hooks.Register(extensions.HookAfterMemberInvite, audit("member_invited"))
	hooks.Register(extensions.HookAfterRoleChange, audit("role_changed"))
	hooks.Register(extensions.HookAfterMemberRemove, audit("member_removed"))
	hooks.Register(extensions.HookAfterTeamDelete, audit("team_deleted"))
}
