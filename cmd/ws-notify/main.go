// Package main implements the notification fan-out Lambda. EventBridge
// delivers committed domain events here; the handler resolves the
// affected team's members and pushes the event to every member's live
// WebSocket connections.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/di"
	"teamcal-backend/infrastructure/persistence/dynamodb"
)

var (
	connections ports.ConnectionStore
	members     ports.MemberStore
	pushClient  *apigatewaymanagementapi.Client
	logger      *zap.Logger
)

// errConnectionGone marks a push that failed because the socket closed
// without a clean disconnect. The row is already pruned when this is
// returned.
var errConnectionGone = errors.New("connection gone")

// notification carries the routing fields shared by every domain event
// so the fan-out can pick recipients without knowing each event type.
// Team events route to the whole team; user events route to one user.
type notification struct {
	EventType string `json:"event_type"`
	TeamID    string `json:"team_id"`
	UserID    string `json:"user_id"`
}

// pushMessage is the frame delivered to connected clients.
type pushMessage struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err = di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	awsCfg, err := di.ProvideAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	dynamoClient := di.ProvideDynamoDBClient(awsCfg)
	connections = dynamodb.NewConnectionStore(dynamoClient, cfg.ConnectionsTable, logger)
	members = dynamodb.NewMemberRepository(dynamoClient, cfg.DynamoDBTable, logger)

	if cfg.WebSocketEndpoint == "" {
		logger.Warn("WEBSOCKET_ENDPOINT is not set; pushes will fail until it is configured")
	}
	pushClient = apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String("https://" + cfg.WebSocketEndpoint)
	})
}

// resolveRecipients maps an event to the users who should see it.
func resolveRecipients(ctx context.Context, note notification) ([]valueobjects.UserID, error) {
	if note.TeamID != "" {
		teamID, err := valueobjects.NewTeamIDFromString(note.TeamID)
		if err != nil {
			return nil, fmt.Errorf("event carries invalid team id: %w", err)
		}
		memberships, err := members.FindByTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve team members: %w", err)
		}
		recipients := make([]valueobjects.UserID, 0, len(memberships))
		for _, membership := range memberships {
			recipients = append(recipients, membership.UserID())
		}
		return recipients, nil
	}

	if note.UserID != "" {
		userID, err := valueobjects.NewUserIDFromString(note.UserID)
		if err != nil {
			return nil, fmt.Errorf("event carries invalid user id: %w", err)
		}
		return []valueobjects.UserID{userID}, nil
	}

	return nil, nil
}

// push delivers one frame to one connection, pruning the registration
// when the gateway reports the socket gone.
func push(ctx context.Context, connectionID string, payload []byte) error {
	_, err := pushClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err == nil {
		return nil
	}

	var gone *apigwtypes.GoneException
	if errors.As(err, &gone) {
		if delErr := connections.Delete(ctx, connectionID); delErr != nil {
			logger.Warn("Failed to prune gone connection",
				zap.String("connectionID", connectionID),
				zap.Error(delErr),
			)
		}
		return errConnectionGone
	}

	return err
}

// handler fans one domain event out to the recipients' connections.
// Per-connection failures are logged and skipped; the event itself is
// only retried when recipient resolution fails.
func handler(ctx context.Context, event events.CloudWatchEvent) error {
	var note notification
	if err := json.Unmarshal(event.Detail, &note); err != nil {
		return fmt.Errorf("failed to parse event detail: %w", err)
	}

	recipients, err := resolveRecipients(ctx, note)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Debug("Event has no recipients", zap.String("eventType", event.DetailType))
		return nil
	}

	payload, err := json.Marshal(pushMessage{
		Type:      event.DetailType,
		Timestamp: time.Now().Unix(),
		Data:      event.Detail,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push frame: %w", err)
	}

	delivered, pruned, failed := 0, 0, 0
	for _, userID := range recipients {
		conns, err := connections.FindByUser(ctx, userID)
		if err != nil {
			logger.Warn("Failed to list connections for user",
				zap.String("userID", userID.String()),
				zap.Error(err),
			)
			continue
		}

		for _, conn := range conns {
			switch err := push(ctx, conn.ConnectionID, payload); {
			case err == nil:
				delivered++
			case errors.Is(err, errConnectionGone):
				pruned++
			default:
				failed++
				logger.Warn("Failed to push to connection",
					zap.String("connectionID", conn.ConnectionID),
					zap.Error(err),
				)
			}
		}
	}

	logger.Info("Fan-out complete",
		zap.String("eventType", event.DetailType),
		zap.Int("recipients", len(recipients)),
		zap.Int("delivered", delivered),
		zap.Int("pruned", pruned),
		zap.Int("failed", failed),
	)

	return nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		logger.Info("Starting notification fan-out Lambda")
		lambda.Start(handler)
		return
	}

	// Local test mode pushes a synthetic event through the handler
	// against the configured tables and endpoint.
	logger.Info("Running in local test mode")

	detail, _ := json.Marshal(map[string]interface{}{
		"event_type": "event.created",
		"team_id":    valueobjects.NewTeamID().String(),
		"event_id":   valueobjects.NewEventID().String(),
	})

	event := events.CloudWatchEvent{
		DetailType: "event.created",
		Detail:     detail,
	}

	if err := handler(context.Background(), event); err != nil {
		logger.Fatal("Test fan-out failed", zap.Error(err))
	}
}
