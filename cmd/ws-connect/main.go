// Package main implements the WebSocket lifecycle Lambda. The $connect
// route authenticates the caller's token and registers the connection;
// $disconnect removes the registration so notifications stop fanning
// out to a dead socket.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/infrastructure/config"
	"teamcal-backend/infrastructure/di"
	"teamcal-backend/infrastructure/persistence/dynamodb"
	"teamcal-backend/pkg/auth"
)

// connectionTTL bounds how long a registration survives without a clean
// disconnect. DynamoDB expires the row afterwards.
const connectionTTL = 24 * time.Hour

var (
	cfg         *config.Config
	connections ports.ConnectionStore
	validator   *auth.JWTValidator
	logger      *zap.Logger
)

func init() {
	var err error
	cfg, err = config.LoadConfig()
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

	validator, err = di.ProvideJWTValidator(cfg)
	if err != nil {
		logger.Fatal("Failed to build token validator", zap.Error(err))
	}

	connections = dynamodb.NewConnectionStore(di.ProvideDynamoDBClient(awsCfg), cfg.ConnectionsTable, logger)
}

// extractToken reads the token from the query string, falling back to
// the Authorization header. Browsers cannot set headers on a WebSocket
// upgrade, so the query parameter is the primary channel.
func extractToken(request events.APIGatewayWebsocketProxyRequest) string {
	if token := request.QueryStringParameters["token"]; token != "" {
		return token
	}
	return request.Headers["Authorization"]
}

func handleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	token := extractToken(request)
	if token == "" {
		logger.Warn("WebSocket connect without token", zap.String("connectionID", connectionID))
		return respond(http.StatusUnauthorized, map[string]string{"error": "missing authentication token"}), nil
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket authentication failed",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return respond(http.StatusUnauthorized, map[string]string{"error": "unauthorized"}), nil
	}

	now := time.Now().UTC()
	conn := ports.Connection{
		ConnectionID: connectionID,
		UserID:       claims.UserID,
		ConnectedAt:  now,
		TTL:          now.Add(connectionTTL).Unix(),
	}

	if err := connections.Save(ctx, conn); err != nil {
		logger.Error("Failed to register connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return respond(http.StatusInternalServerError, map[string]string{"error": "internal server error"}), nil
	}

	logger.Info("WebSocket connected",
		zap.String("connectionID", connectionID),
		zap.String("userID", claims.UserID),
	)

	return respond(http.StatusOK, map[string]interface{}{
		"type":         "connection_established",
		"connectionId": connectionID,
		"userId":       claims.UserID,
		"timestamp":    now.Unix(),
	}), nil
}

func handleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// A failed delete leaves the row for the TTL sweeper, so the
	// disconnect itself still succeeds.
	if err := connections.Delete(ctx, connectionID); err != nil {
		logger.Warn("Failed to remove connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
	} else {
		logger.Info("WebSocket disconnected", zap.String("connectionID", connectionID))
	}

	return respond(http.StatusOK, map[string]string{"status": "disconnected"}), nil
}

// handler dispatches on the lifecycle route key. API Gateway only sends
// $connect and $disconnect here; the local harness uses an empty key,
// which lands on the connect path.
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$disconnect":
		return handleDisconnect(ctx, request)
	default:
		return handleConnect(ctx, request)
	}
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(payload),
	}
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		logger.Info("Starting WebSocket lifecycle Lambda")
		lambda.Start(handler)
		return
	}

	// Local test mode mints a development token and runs one
	// connect/disconnect round trip against the configured table.
	logger.Info("Running in local test mode")

	issuer, err := di.ProvideJWTGenerator(cfg)
	if err != nil {
		logger.Fatal("Failed to build token issuer", zap.Error(err))
	}

	token, err := issuer.GenerateToken("local-test-user", "local@example.com", "Local Tester")
	if err != nil {
		logger.Fatal("Failed to mint test token", zap.Error(err))
	}

	request := events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: "local-test-connection",
			RouteKey:     "$connect",
		},
		QueryStringParameters: map[string]string{"token": token},
	}

	response, err := handler(context.Background(), request)
	if err != nil {
		logger.Fatal("Test connect failed", zap.Error(err))
	}
	logger.Info("Test connect response", zap.Int("status", response.StatusCode), zap.String("body", response.Body))

	request.RequestContext.RouteKey = "$disconnect"
	if _, err := handler(context.Background(), request); err != nil {
		logger.Fatal("Test disconnect failed", zap.Error(err))
	}
}
