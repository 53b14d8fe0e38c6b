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

// UserRepository implements the UserStore interface using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserStore {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"` // EMAIL#<email> for lookup by address
	GSI1SK     string `dynamodbav:"GSI1SK"` // USER#<userId>
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	Email      string `dynamodbav:"Email"`
	Name       string `dynamodbav:"Name"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
	Version    int    `dynamodbav:"Version"`
}

// Create persists a new user. The email index is checked first, then
// the row is written with a condition on key absence. The index check
// is eventually consistent, so two racing creates with the same email
// can both pass it; the condition still guarantees at most one row per
// user ID.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	existing, err := r.FindByEmail(ctx, user.Email())
	if err != nil {
		return err
	}
	if existing != nil {
		return emailTaken(user.Email().String())
	}

	item, err := r.userToItem(user)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
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
				"USER_EXISTS",
				"A user with this identifier already exists",
			).WithDetail("userId", user.ID().String())
		}
		r.logger.Error("Failed to save user",
			zap.Error(err),
			zap.String("userID", user.ID().String()),
		)
		return storeError(err, "PutItem")
	}

	r.logger.Info("User created",
		zap.String("userID", user.ID().String()),
		zap.String("PK", item.PK),
	)

	return nil
}

// FindByID retrieves a user by ID, nil when absent
func (r *UserRepository) FindByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error) {
	pk, err := userKey(id.String())
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

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return r.itemToUser(item)
}

// FindByEmail retrieves a user by normalized email through the email
// index, nil when absent
func (r *UserRepository) FindByEmail(ctx context.Context, email valueobjects.Email) (*entities.User, error) {
	gsi1pk, err := emailKey(email.String())
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(gsi1Name),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gsi1pk},
			":sk": &types.AttributeValueMemberS{Value: userKeyPrefix},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, storeError(err, "Query")
	}

	if len(result.Items) == 0 {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return r.itemToUser(item)
}

// Update persists field-level changes to an existing user. A changed
// email moves the row's index key in the same update, so the old
// address stops resolving as soon as the new one does.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	pk, err := userKey(user.ID().String())
	if err != nil {
		return err
	}
	gsi1pk, err := emailKey(user.Email().String())
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression: aws.String("SET Email = :email, #name = :name, GSI1PK = :gsi1pk, UpdatedAt = :updatedAt, Version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#name": "Name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email":     &types.AttributeValueMemberS{Value: user.Email().String()},
			":name":      &types.AttributeValueMemberS{Value: user.Name()},
			":gsi1pk":    &types.AttributeValueMemberS{Value: gsi1pk},
			":updatedAt": &types.AttributeValueMemberS{Value: utils.FormatRFC3339(user.UpdatedAt())},
			":version":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", user.Version())},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return userNotFound(user.ID().String())
		}
		r.logger.Error("Failed to update user",
			zap.Error(err),
			zap.String("userID", user.ID().String()),
		)
		return storeError(err, "UpdateItem")
	}

	return nil
}

// Delete removes a user row
func (r *UserRepository) Delete(ctx context.Context, id valueobjects.UserID) error {
	pk, err := userKey(id.String())
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
			return userNotFound(id.String())
		}
		return storeError(err, "DeleteItem")
	}

	r.logger.Debug("User deleted", zap.String("userID", id.String()))

	return nil
}

func (r *UserRepository) userToItem(user *entities.User) (userItem, error) {
	pk, err := userKey(user.ID().String())
	if err != nil {
		return userItem{}, err
	}
	gsi1pk, err := emailKey(user.Email().String())
	if err != nil {
		return userItem{}, err
	}

	return userItem{
		PK:         pk,
		SK:         pk,
		GSI1PK:     gsi1pk,
		GSI1SK:     pk,
		EntityType: "USER",
		UserID:     user.ID().String(),
		Email:      user.Email().String(),
		Name:       user.Name(),
		CreatedAt:  utils.FormatRFC3339(user.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(user.UpdatedAt()),
		Version:    user.Version(),
	}, nil
}

func (r *UserRepository) itemToUser(item userItem) (*entities.User, error) {
	id, err := valueobjects.NewUserIDFromString(item.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", item.PK, err)
	}
	email, err := valueobjects.NewEmail(item.Email)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", item.PK, err)
	}
	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", item.PK, err)
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", item.PK, err)
	}

	user, err := entities.ReconstructUser(id, email, item.Name, createdAt, updatedAt, item.Version)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", item.PK, err)
	}
	return user, nil
}

func emailTaken(email string) error {
	return errors.NewDomainError(
		errors.DomainConflictError,
		"EMAIL_TAKEN",
		"A user with this email already exists",
	).WithDetail("email", email)
}

func userNotFound(userID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"USER_NOT_FOUND",
		"The requested user does not exist",
	).WithDetail("userId", userID)
}
