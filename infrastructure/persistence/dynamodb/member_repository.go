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

// MemberRepository implements the MemberStore interface using DynamoDB
type MemberRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.MemberStore {
	return &MemberRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// memberItem represents the DynamoDB item structure for a membership.
// The base key groups members under their team; the GSI1 key inverts
// the relation so one query answers "which teams is this user in".
type memberItem struct {
	PK         string `dynamodbav:"PK"`     // TEAM#<teamId>
	SK         string `dynamodbav:"SK"`     // MEMBER#<userId>
	GSI1PK     string `dynamodbav:"GSI1PK"` // USER#<userId>
	GSI1SK     string `dynamodbav:"GSI1SK"` // TEAM#<teamId>
	EntityType string `dynamodbav:"EntityType"`
	TeamID     string `dynamodbav:"TeamID"`
	UserID     string `dynamodbav:"UserID"`
	Role       string `dynamodbav:"Role"`
	InvitedBy  string `dynamodbav:"InvitedBy"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
	Version    int    `dynamodbav:"Version"`
}

// Create persists a new membership with a condition on key absence
func (r *MemberRepository) Create(ctx context.Context, member *entities.TeamMember) error {
	item, err := r.memberToItem(member)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal member: %w", err)
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
				"ALREADY_MEMBER",
				"The user is already a member of this team",
			).WithDetail("teamId", member.TeamID().String()).
				WithDetail("userId", member.UserID().String())
		}
		r.logger.Error("Failed to save member",
			zap.Error(err),
			zap.String("teamID", member.TeamID().String()),
			zap.String("userID", member.UserID().String()),
		)
		return storeError(err, "PutItem")
	}

	r.logger.Info("Member added",
		zap.String("teamID", member.TeamID().String()),
		zap.String("userID", member.UserID().String()),
		zap.String("role", member.Role().String()),
	)

	return nil
}

// FindByTeamAndUser retrieves a single membership, nil when absent
func (r *MemberRepository) FindByTeamAndUser(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) (*entities.TeamMember, error) {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return nil, err
	}
	sk, err := memberKey(userID.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, storeError(err, "GetItem")
	}

	if result.Item == nil {
		return nil, nil
	}

	var item memberItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal member: %w", err)
	}

	return r.itemToMember(item)
}

// FindByTeam retrieves every membership of a team
func (r *MemberRepository) FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.TeamMember, error) {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: memberKeyPrefix},
		},
	}

	return r.queryMembers(ctx, input)
}

// FindByUser retrieves every membership a user holds, across teams,
// through the inverted GSI1 key
func (r *MemberRepository) FindByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.TeamMember, error) {
	gsi1pk, err := userKey(userID.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(gsi1Name),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gsi1pk},
			":sk": &types.AttributeValueMemberS{Value: teamKeyPrefix},
		},
	}

	return r.queryMembers(ctx, input)
}

// Update persists a role change to an existing membership
func (r *MemberRepository) Update(ctx context.Context, member *entities.TeamMember) error {
	pk, err := teamKey(member.TeamID().String())
	if err != nil {
		return err
	}
	sk, err := memberKey(member.UserID().String())
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression: aws.String("SET #role = :role, UpdatedAt = :updatedAt, Version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#role": "Role",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role":      &types.AttributeValueMemberS{Value: member.Role().String()},
			":updatedAt": &types.AttributeValueMemberS{Value: utils.FormatRFC3339(member.UpdatedAt())},
			":version":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", member.Version())},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return memberNotFound(member.TeamID().String(), member.UserID().String())
		}
		r.logger.Error("Failed to update member",
			zap.Error(err),
			zap.String("teamID", member.TeamID().String()),
			zap.String("userID", member.UserID().String()),
		)
		return storeError(err, "UpdateItem")
	}

	return nil
}

// Delete removes a membership
func (r *MemberRepository) Delete(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) error {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return err
	}
	sk, err := memberKey(userID.String())
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return memberNotFound(teamID.String(), userID.String())
		}
		return storeError(err, "DeleteItem")
	}

	r.logger.Debug("Member removed",
		zap.String("teamID", teamID.String()),
		zap.String("userID", userID.String()),
	)

	return nil
}

// queryMembers runs a membership query to exhaustion, following
// pagination until the full set is collected
func (r *MemberRepository) queryMembers(ctx context.Context, input *dynamodb.QueryInput) ([]*entities.TeamMember, error) {
	var members []*entities.TeamMember

	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, storeError(err, "Query")
		}

		for _, raw := range result.Items {
			var item memberItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal member item", zap.Error(err))
				continue
			}

			member, err := r.itemToMember(item)
			if err != nil {
				r.logger.Warn("Skipping corrupt member row",
					zap.String("PK", item.PK),
					zap.String("SK", item.SK),
					zap.Error(err),
				)
				continue
			}
			members = append(members, member)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return members, nil
}

func (r *MemberRepository) memberToItem(member *entities.TeamMember) (memberItem, error) {
	pk, err := teamKey(member.TeamID().String())
	if err != nil {
		return memberItem{}, err
	}
	sk, err := memberKey(member.UserID().String())
	if err != nil {
		return memberItem{}, err
	}
	gsi1pk, err := userKey(member.UserID().String())
	if err != nil {
		return memberItem{}, err
	}

	return memberItem{
		PK:         pk,
		SK:         sk,
		GSI1PK:     gsi1pk,
		GSI1SK:     pk,
		EntityType: "MEMBER",
		TeamID:     member.TeamID().String(),
		UserID:     member.UserID().String(),
		Role:       member.Role().String(),
		InvitedBy:  member.InvitedBy().String(),
		CreatedAt:  utils.FormatRFC3339(member.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(member.UpdatedAt()),
		Version:    member.Version(),
	}, nil
}

func (r *MemberRepository) itemToMember(item memberItem) (*entities.TeamMember, error) {
	teamID, err := valueobjects.NewTeamIDFromString(item.TeamID)
	if err != nil {
		return nil, err
	}
	userID, err := valueobjects.NewUserIDFromString(item.UserID)
	if err != nil {
		return nil, err
	}
	role, err := valueobjects.NewRoleFromString(item.Role)
	if err != nil {
		return nil, err
	}
	invitedBy, err := valueobjects.NewUserIDFromString(item.InvitedBy)
	if err != nil {
		return nil, err
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructTeamMember(teamID, userID, role, invitedBy, createdAt, updatedAt, item.Version)
}

func memberNotFound(teamID, userID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"MEMBER_NOT_FOUND",
		"The user is not a member of this team",
	).WithDetail("teamId", teamID).WithDetail("userId", userID)
}
