package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// EventRepository implements the EventStore interface using DynamoDB
type EventRepository struct {
	client        *dynamodb.Client
	tableName     string
	maxRangeDays  int
	maxConcurrent int
	logger        *zap.Logger
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(client *dynamodb.Client, tableName string, cfg *config.DomainConfig, logger *zap.Logger) ports.EventStore {
	return &EventRepository{
		client:        client,
		tableName:     tableName,
		maxRangeDays:  cfg.MaxRangeDays,
		maxConcurrent: cfg.MaxConcurrentDayQueries,
		logger:        logger,
	}
}

// eventItem represents the DynamoDB item structure for a calendar event.
// The GSI1 key places the event in its UTC start-day partition, which is
// what the per-day range queries read.
type eventItem struct {
	PK          string `dynamodbav:"PK"`     // TEAM#<teamId>
	SK          string `dynamodbav:"SK"`     // EVENT#<eventId>
	GSI1PK      string `dynamodbav:"GSI1PK"` // DATE#<YYYY-MM-DD>
	GSI1SK      string `dynamodbav:"GSI1SK"` // TEAM#<teamId>#EVENT#<eventId>
	EntityType  string `dynamodbav:"EntityType"`
	EventID     string `dynamodbav:"EventID"`
	TeamID      string `dynamodbav:"TeamID"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description"`
	Category    string `dynamodbav:"Category"`
	Color       string `dynamodbav:"Color"`
	StartTime   string `dynamodbav:"StartTime"`
	EndTime     string `dynamodbav:"EndTime"`
	CreatedBy   string `dynamodbav:"CreatedBy"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
	Version     int    `dynamodbav:"Version"`
}

// Create persists a new event with a condition on key absence
func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	item, err := r.eventToItem(event)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
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
				"EVENT_EXISTS",
				"An event with this identifier already exists",
			).WithDetail("teamId", event.TeamID().String()).
				WithDetail("eventId", event.ID().String())
		}
		r.logger.Error("Failed to save event",
			zap.Error(err),
			zap.String("teamID", event.TeamID().String()),
			zap.String("eventID", event.ID().String()),
		)
		return storeError(err, "PutItem")
	}

	r.logger.Info("Event created",
		zap.String("teamID", event.TeamID().String()),
		zap.String("eventID", event.ID().String()),
		zap.String("startDay", event.StartDay()),
	)

	return nil
}

// FindByID retrieves an event within a team, nil when absent
func (r *EventRepository) FindByID(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) (*entities.Event, error) {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return nil, err
	}
	sk, err := eventKey(eventID.String())
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

	var item eventItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return r.itemToEvent(item)
}

// FindByTeam retrieves every event of a team, unordered
func (r *EventRepository) FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.Event, error) {
	input, err := r.teamEventsQuery(teamID, nil)
	if err != nil {
		return nil, err
	}
	return r.queryEvents(ctx, input)
}

// FindByCategory retrieves a team's events matching the category, unordered
func (r *EventRepository) FindByCategory(ctx context.Context, teamID valueobjects.TeamID, category valueobjects.Category) ([]*entities.Event, error) {
	filter := expression.Name("Category").Equal(expression.Value(category.String()))
	input, err := r.teamEventsQuery(teamID, &filter)
	if err != nil {
		return nil, err
	}
	return r.queryEvents(ctx, input)
}

// FindByCreator retrieves a team's events created by the user, unordered
func (r *EventRepository) FindByCreator(ctx context.Context, teamID valueobjects.TeamID, creatorID valueobjects.UserID) ([]*entities.Event, error) {
	if creatorID.IsZero() {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			"creator ID must not be empty",
		).WithDetail("field", "creatorId")
	}
	filter := expression.Name("CreatedBy").Equal(expression.Value(creatorID.String()))
	input, err := r.teamEventsQuery(teamID, &filter)
	if err != nil {
		return nil, err
	}
	return r.queryEvents(ctx, input)
}

// FindByDateRange retrieves events whose UTC start day falls within the
// inclusive range. Each day is one index lookup; lookups run
// concurrently under a bounded group. Any failed day fails the whole
// range, because a partial answer would read as a day with no events.
func (r *EventRepository) FindByDateRange(ctx context.Context, query ports.DateRangeQuery) ([]*entities.Event, error) {
	days, err := utils.DaysInRange(query.Start, query.End)
	if err != nil {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_TIME_RANGE",
			"Range end must not precede range start",
		).WithCause(err)
	}
	if len(days) > r.maxRangeDays {
		return nil, errors.NewDomainError(
			errors.DomainValidationError,
			"RANGE_TOO_WIDE",
			fmt.Sprintf("date range spans %d days, maximum is %d", len(days), r.maxRangeDays),
		).WithDetail("days", len(days)).WithDetail("max_days", r.maxRangeDays)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	perDay := make([][]*entities.Event, len(days))
	for i, day := range days {
		g.Go(func() error {
			found, err := r.queryDay(gctx, day, query.TeamID)
			if err != nil {
				return err
			}
			perDay[i] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []*entities.Event
	for _, found := range perDay {
		merged = append(merged, found...)
	}

	r.logger.Debug("Date range query completed",
		zap.Int("days", len(days)),
		zap.Int("events", len(merged)),
	)

	return merged, nil
}

// Update persists field-level changes to an existing event. The date
// index key is written in the same update expression as the time
// fields, so a reschedule across a day boundary moves the row's index
// placement and its fields in one operation.
func (r *EventRepository) Update(ctx context.Context, event *entities.Event) error {
	pk, err := teamKey(event.TeamID().String())
	if err != nil {
		return err
	}
	sk, err := eventKey(event.ID().String())
	if err != nil {
		return err
	}
	gsi1pk, err := dateKey(event.StartDay())
	if err != nil {
		return err
	}
	gsi1sk, err := eventDateSortKey(event.TeamID().String(), event.ID().String())
	if err != nil {
		return err
	}

	update := expression.
		Set(expression.Name("Title"), expression.Value(event.Details().Title())).
		Set(expression.Name("Description"), expression.Value(event.Details().Description())).
		Set(expression.Name("Category"), expression.Value(event.Category().String())).
		Set(expression.Name("Color"), expression.Value(event.Color().String())).
		Set(expression.Name("StartTime"), expression.Value(utils.FormatRFC3339(event.Span().Start()))).
		Set(expression.Name("EndTime"), expression.Value(utils.FormatRFC3339(event.Span().End()))).
		Set(expression.Name("GSI1PK"), expression.Value(gsi1pk)).
		Set(expression.Name("GSI1SK"), expression.Value(gsi1sk)).
		Set(expression.Name("UpdatedAt"), expression.Value(utils.FormatRFC3339(event.UpdatedAt()))).
		Set(expression.Name("Version"), expression.Value(event.Version()))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build event update: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return eventNotFound(event.TeamID().String(), event.ID().String())
		}
		r.logger.Error("Failed to update event",
			zap.Error(err),
			zap.String("teamID", event.TeamID().String()),
			zap.String("eventID", event.ID().String()),
		)
		return storeError(err, "UpdateItem")
	}

	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, teamID valueobjects.TeamID, eventID valueobjects.EventID) error {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return err
	}
	sk, err := eventKey(eventID.String())
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
			return eventNotFound(teamID.String(), eventID.String())
		}
		return storeError(err, "DeleteItem")
	}

	r.logger.Debug("Event deleted",
		zap.String("teamID", teamID.String()),
		zap.String("eventID", eventID.String()),
	)

	return nil
}

// teamEventsQuery builds a base-table query over a team's event rows,
// optionally with a filter condition
func (r *EventRepository) teamEventsQuery(teamID valueobjects.TeamID, filter *expression.ConditionBuilder) (*dynamodb.QueryInput, error) {
	pk, err := teamKey(teamID.String())
	if err != nil {
		return nil, err
	}

	keyCond := expression.Key("PK").Equal(expression.Value(pk)).
		And(expression.Key("SK").BeginsWith(eventKeyPrefix))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// queryDay reads one DATE# partition of the GSI, optionally narrowed to
// a single team through the sort key prefix
func (r *EventRepository) queryDay(ctx context.Context, day string, teamID valueobjects.TeamID) ([]*entities.Event, error) {
	gsi1pk, err := dateKey(day)
	if err != nil {
		return nil, err
	}

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(gsi1pk))
	if !teamID.IsZero() {
		teamPart, err := teamKey(teamID.String())
		if err != nil {
			return nil, err
		}
		keyCond = keyCond.And(expression.Key("GSI1SK").BeginsWith(teamPart + "#" + eventKeyPrefix))
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build day query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	return r.queryEvents(ctx, input)
}

// queryEvents runs an event query to exhaustion, following pagination
// until the full set is collected
func (r *EventRepository) queryEvents(ctx context.Context, input *dynamodb.QueryInput) ([]*entities.Event, error) {
	var found []*entities.Event

	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, storeError(err, "Query")
		}

		for _, raw := range result.Items {
			var item eventItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal event item", zap.Error(err))
				continue
			}

			event, err := r.itemToEvent(item)
			if err != nil {
				r.logger.Warn("Skipping corrupt event row",
					zap.String("PK", item.PK),
					zap.String("SK", item.SK),
					zap.Error(err),
				)
				continue
			}
			found = append(found, event)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return found, nil
}

func (r *EventRepository) eventToItem(event *entities.Event) (eventItem, error) {
	pk, err := teamKey(event.TeamID().String())
	if err != nil {
		return eventItem{}, err
	}
	sk, err := eventKey(event.ID().String())
	if err != nil {
		return eventItem{}, err
	}
	gsi1pk, err := dateKey(event.StartDay())
	if err != nil {
		return eventItem{}, err
	}
	gsi1sk, err := eventDateSortKey(event.TeamID().String(), event.ID().String())
	if err != nil {
		return eventItem{}, err
	}

	return eventItem{
		PK:          pk,
		SK:          sk,
		GSI1PK:      gsi1pk,
		GSI1SK:      gsi1sk,
		EntityType:  "EVENT",
		EventID:     event.ID().String(),
		TeamID:      event.TeamID().String(),
		Title:       event.Details().Title(),
		Description: event.Details().Description(),
		Category:    event.Category().String(),
		Color:       event.Color().String(),
		StartTime:   utils.FormatRFC3339(event.Span().Start()),
		EndTime:     utils.FormatRFC3339(event.Span().End()),
		CreatedBy:   event.CreatedBy().String(),
		CreatedAt:   utils.FormatRFC3339(event.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(event.UpdatedAt()),
		Version:     event.Version(),
	}, nil
}

func (r *EventRepository) itemToEvent(item eventItem) (*entities.Event, error) {
	id, err := valueobjects.NewEventIDFromString(item.EventID)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	teamID, err := valueobjects.NewTeamIDFromString(item.TeamID)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	createdBy, err := valueobjects.NewUserIDFromString(item.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	details, err := valueobjects.NewEventDetails(item.Title, item.Description)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	category, err := valueobjects.NewCategoryFromString(item.Category)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}

	var color valueobjects.Color
	if item.Color != "" {
		color, err = valueobjects.NewColor(item.Color)
		if err != nil {
			return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
		}
	}

	start, err := utils.ParseRFC3339(item.StartTime)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	end, err := utils.ParseRFC3339(item.EndTime)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	span, err := valueobjects.NewTimeRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}

	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt event row %s/%s: %w", item.PK, item.SK, err)
	}

	return entities.ReconstructEvent(id, teamID, createdBy, details, category, color, span, createdAt, updatedAt, item.Version)
}

func eventNotFound(teamID, eventID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"EVENT_NOT_FOUND",
		"The requested event does not exist",
	).WithDetail("teamId", teamID).WithDetail("eventId", eventID)
}
