package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/utils"
)

// ConnectionStore implements the ConnectionStore port using DynamoDB.
// Rows carry a TTL so connections that never disconnect cleanly age out
// on their own.
type ConnectionStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConnectionStore creates a new ConnectionStore
func NewConnectionStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ConnectionStore {
	return &ConnectionStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// connectionItem represents the DynamoDB item structure for a live
// connection. The GSI1 key groups a user's connections so one query
// answers "where do I push this user's notifications".
type connectionItem struct {
	PK           string `dynamodbav:"PK"`     // CONNECTION#<connectionId>
	SK           string `dynamodbav:"SK"`     // CONNECTION#<connectionId>
	GSI1PK       string `dynamodbav:"GSI1PK"` // USER#<userId>
	GSI1SK       string `dynamodbav:"GSI1SK"` // CONNECTION#<connectionId>
	EntityType   string `dynamodbav:"EntityType"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	UserID       string `dynamodbav:"UserID"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// Save registers a connection. Reconnects with the same ID overwrite
// the previous row, which is the desired behavior.
func (s *ConnectionStore) Save(ctx context.Context, conn ports.Connection) error {
	pk, err := connectionKey(conn.ConnectionID)
	if err != nil {
		return err
	}
	gsi1pk, err := userKey(conn.UserID)
	if err != nil {
		return err
	}

	item := connectionItem{
		PK:           pk,
		SK:           pk,
		GSI1PK:       gsi1pk,
		GSI1SK:       pk,
		EntityType:   "CONNECTION",
		ConnectionID: conn.ConnectionID,
		UserID:       conn.UserID,
		ConnectedAt:  utils.FormatRFC3339(conn.ConnectedAt),
		TTL:          conn.TTL,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		s.logger.Error("Failed to save connection",
			zap.Error(err),
			zap.String("connectionID", conn.ConnectionID),
			zap.String("userID", conn.UserID),
		)
		return storeError(err, "PutItem")
	}

	s.logger.Debug("Connection registered",
		zap.String("connectionID", conn.ConnectionID),
		zap.String("userID", conn.UserID),
	)

	return nil
}

// FindByUser retrieves all active connections for a user
func (s *ConnectionStore) FindByUser(ctx context.Context, userID valueobjects.UserID) ([]ports.Connection, error) {
	gsi1pk, err := userKey(userID.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(gsi1Name),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gsi1pk},
			":sk": &types.AttributeValueMemberS{Value: connectionKeyPrefix},
		},
	}

	var connections []ports.Connection

	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, storeError(err, "Query")
		}

		for _, raw := range result.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Failed to unmarshal connection item", zap.Error(err))
				continue
			}

			connectedAt, err := utils.ParseRFC3339(item.ConnectedAt)
			if err != nil {
				s.logger.Warn("Skipping connection row with bad timestamp",
					zap.String("connectionID", item.ConnectionID),
					zap.Error(err),
				)
				continue
			}

			connections = append(connections, ports.Connection{
				ConnectionID: item.ConnectionID,
				UserID:       item.UserID,
				ConnectedAt:  connectedAt,
				TTL:          item.TTL,
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return connections, nil
}

// Delete removes a connection. Deleting an already-gone connection is
// not an error; disconnect notifications can arrive more than once.
func (s *ConnectionStore) Delete(ctx context.Context, connectionID string) error {
	pk, err := connectionKey(connectionID)
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return storeError(err, "DeleteItem")
	}

	s.logger.Debug("Connection removed", zap.String("connectionID", connectionID))

	return nil
}
