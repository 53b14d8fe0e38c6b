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
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// TeamRepository implements the TeamStore interface using DynamoDB
type TeamRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.TeamStore {
	return &TeamRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// teamItem represents the DynamoDB item structure for a team. Team rows
// carry no GSI1 attributes; the index only holds users, memberships and
// events.
type teamItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	EntityType      string `dynamodbav:"EntityType"`
	TeamID          string `dynamodbav:"TeamID"`
	Name            string `dynamodbav:"Name"`
	Description     string `dynamodbav:"Description"`
	OwnerID         string `dynamodbav:"OwnerID"`
	SubscriptionKey string `dynamodbav:"SubscriptionKey"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
	Version         int    `dynamodbav:"Version"`
}

// Create persists a new team with a condition on key absence
func (r *TeamRepository) Create(ctx context.Context, team *entities.Team) error {
	item, err := r.teamToItem(team)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal team: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return errors.NewDomainError(
				errors.DomainConflictError,
				"TEAM_EXISTS",
				"A team with this identifier already exists",
			).WithDetail("teamId", team.ID().String())
		}
		r.logger.Error("Failed to save team",
			zap.Error(err),
			zap.String("teamID", team.ID().String()),
		)
		return storeError(err, "PutItem")
	}

	r.logger.Info("Team created",
		zap.String("teamID", team.ID().String()),
		zap.String("ownerID", team.OwnerID().String()),
		zap.String("PK", item.PK),
	)

	return nil
}

// FindByID retrieves a team by ID, nil when absent
func (r *TeamRepository) FindByID(ctx context.Context, id valueobjects.TeamID) (*entities.Team, error) {
	pk, err := teamKey(id.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, storeError(err, "GetItem")
	}

	if result.Item == nil {
		return nil, nil
	}

	var item teamItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team: %w", err)
	}

	return r.itemToTeam(item)
}

// Update persists field-level changes to an existing team. Identity
// fields stay out of the expression, so a row can never change its
// owner or creation time through this path.
func (r *TeamRepository) Update(ctx context.Context, team *entities.Team) error {
	pk, err := teamKey(team.ID().String())
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression: aws.String("SET #name = :name, Description = :description, SubscriptionKey = :subscriptionKey, UpdatedAt = :updatedAt, Version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#name": "Name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":            &types.AttributeValueMemberS{Value: team.Name()},
			":description":     &types.AttributeValueMemberS{Value: team.Description()},
			":subscriptionKey": &types.AttributeValueMemberS{Value: team.SubscriptionKey()},
			":updatedAt":       &types.AttributeValueMemberS{Value: utils.FormatRFC3339(team.UpdatedAt())},
			":version":         &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", team.Version())},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return teamNotFound(team.ID().String())
		}
		r.logger.Error("Failed to update team",
			zap.Error(err),
			zap.String("teamID", team.ID().String()),
		)
		return storeError(err, "UpdateItem")
	}

	return nil
}

// Delete removes the team row only. Membership and event rows under
// TEAM#<teamId> stay behind as orphans; they are unreachable through
// team-scoped reads once the team row is gone, and a background sweep
// can reclaim them.
func (r *TeamRepository) Delete(ctx context.Context, id valueobjects.TeamID) error {
	pk, err := teamKey(id.String())
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return teamNotFound(id.String())
		}
		return storeError(err, "DeleteItem")
	}

	r.logger.Info("Team deleted, scoped rows left for sweep",
		zap.String("teamID", id.String()),
	)

	return nil
}

func (r *TeamRepository) teamToItem(team *entities.Team) (teamItem, error) {
	pk, err := teamKey(team.ID().String())
	if err != nil {
		return teamItem{}, err
	}

	return teamItem{
		PK:              pk,
		SK:              pk,
		EntityType:      "TEAM",
		TeamID:          team.ID().String(),
		Name:            team.Name(),
		Description:     team.Description(),
		OwnerID:         team.OwnerID().String(),
		SubscriptionKey: team.SubscriptionKey(),
		CreatedAt:       utils.FormatRFC3339(team.CreatedAt()),
		UpdatedAt:       utils.FormatRFC3339(team.UpdatedAt()),
		Version:         team.Version(),
	}, nil
}

func (r *TeamRepository) itemToTeam(item teamItem) (*entities.Team, error) {
	id, err := valueobjects.NewTeamIDFromString(item.TeamID)
	if err != nil {
		return nil, fmt.Errorf("corrupt team row %s: %w", item.PK, err)
	}
	ownerID, err := valueobjects.NewUserIDFromString(item.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("corrupt team row %s: %w", item.PK, err)
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt team row %s: %w", item.PK, err)
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt team row %s: %w", item.PK, err)
	}

	team, err := entities.ReconstructTeam(id, item.Name, item.Description, ownerID, item.SubscriptionKey, createdAt, updatedAt, item.Version)
	if err != nil {
		return nil, fmt.Errorf("corrupt team row %s: %w", item.PK, err)
	}
	return team, nil
}

func teamNotFound(teamID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"TEAM_NOT_FOUND",
		"The requested team does not exist",
	).WithDetail("teamId", teamID)
}
