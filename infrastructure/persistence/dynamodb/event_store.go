package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/events"
)

// PublishStatus represents the publishing status of a stored event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"   // Saved but not yet published
	PublishStatusPublished PublishStatus = "published" // Successfully published
	PublishStatusFailed    PublishStatus = "failed"    // Gave up after repeated failures
)

const (
	maxPublishAttempts  = 3
	maxPendingScanLimit = 100
	outboxRetentionDays = 365
)

// OutboxStore implements the DomainEventStore interface using DynamoDB.
// Events are written alongside entity rows and published asynchronously,
// so a publish outage never blocks a calendar operation.
type OutboxStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewOutboxStore creates a new OutboxStore
func NewOutboxStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DomainEventStore {
	return &OutboxStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// outboxItem represents the DynamoDB item structure for a stored domain
// event. Outbox rows carry no GSI1 attributes; the index only serves
// entity lookups.
type outboxItem struct {
	PK              string `dynamodbav:"PK"` // EVENTS#<aggregateId>
	SK              string `dynamodbav:"SK"` // EVENT#<timestamp>#<eventId>
	EntityType      string `dynamodbav:"EntityType"`
	EventID         string `dynamodbav:"EventID"`
	AggregateID     string `dynamodbav:"AggregateID"`
	EventType       string `dynamodbav:"EventType"`
	Payload         string `dynamodbav:"Payload"`
	Timestamp       string `dynamodbav:"Timestamp"`
	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`
	TTL             int64  `dynamodbav:"TTL"`
}

// outboxSortKey builds EVENT#<timestamp>#<eventId>. The same inputs must
// always produce the same string, because the key is recomputed when an
// event is marked published or failed.
func outboxSortKey(timestamp time.Time, eventID string) string {
	return eventKeyPrefix + timestamp.UTC().Format(time.RFC3339Nano) + "#" + eventID
}

// SaveEvents persists domain events as pending outbox rows
func (s *OutboxStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))

	for _, event := range domainEvents {
		item, err := s.eventToItem(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to item: %w", err)
		}

		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return fmt.Errorf("failed to marshal event item: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	if err := s.batchWrite(ctx, writeRequests); err != nil {
		return err
	}

	s.logger.Debug("Domain events stored",
		zap.Int("count", len(domainEvents)),
	)

	return nil
}

// GetEvents retrieves all events for an aggregate in timestamp order
func (s *OutboxStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	pk, err := outboxKey(aggregateID)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var allEvents []events.DomainEvent

	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, storeError(err, "Query")
		}

		for _, raw := range result.Items {
			var item outboxItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event item: %w", err)
			}

			event, err := decodeStoredEvent(item.EventType, []byte(item.Payload))
			if err != nil {
				return nil, fmt.Errorf("failed to decode event %s: %w", item.EventID, err)
			}
			allEvents = append(allEvents, event)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return allEvents, nil
}

// GetPendingEvents retrieves events awaiting publication. A scan with a
// filter is deliberate here: pending rows are few and short-lived, and a
// dedicated status index would grow the table's index count for a
// background path.
func (s *OutboxStore) GetPendingEvents(ctx context.Context, limit int) ([]ports.StoredEvent, error) {
	if limit <= 0 || limit > maxPendingScanLimit {
		limit = maxPendingScanLimit
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("PublishStatus = :status AND begins_with(PK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(PublishStatusPending)},
			":prefix": &types.AttributeValueMemberS{Value: outboxKeyPrefix},
		},
		Limit: aws.Int32(int32(limit)),
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, storeError(err, "Scan")
	}

	stored := make([]ports.StoredEvent, 0, len(result.Items))
	for _, raw := range result.Items {
		var item outboxItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			s.logger.Warn("Skipping malformed outbox row", zap.Error(err))
			continue
		}

		timestamp, err := time.Parse(time.RFC3339Nano, item.Timestamp)
		if err != nil {
			s.logger.Warn("Skipping outbox row with bad timestamp",
				zap.String("eventID", item.EventID),
				zap.Error(err),
			)
			continue
		}

		stored = append(stored, ports.StoredEvent{
			EventID:     item.EventID,
			AggregateID: item.AggregateID,
			EventType:   item.EventType,
			Payload:     []byte(item.Payload),
			Timestamp:   timestamp,
			Status:      item.PublishStatus,
			Attempts:    item.PublishAttempts,
		})
	}

	return stored, nil
}

// MarkPublished flags a stored event as successfully published
func (s *OutboxStore) MarkPublished(ctx context.Context, event ports.StoredEvent) error {
	pk, err := outboxKey(event.AggregateID)
	if err != nil {
		return err
	}
	sk := outboxSortKey(event.Timestamp, event.EventID)

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return fmt.Errorf("outbox row gone for event %s", event.EventID)
		}
		return storeError(err, "UpdateItem")
	}

	return nil
}

// MarkFailed records a failed publish attempt. The event stays pending
// until the attempt budget runs out, then it is parked as failed.
func (s *OutboxStore) MarkFailed(ctx context.Context, event ports.StoredEvent, reason string) error {
	pk, err := outboxKey(event.AggregateID)
	if err != nil {
		return err
	}
	sk := outboxSortKey(event.Timestamp, event.EventID)

	newAttempts := event.Attempts + 1
	status := PublishStatusPending
	if newAttempts >= maxPublishAttempts {
		status = PublishStatusFailed
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: string(status)},
			":attempts": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", newAttempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			":error":    &types.AttributeValueMemberS{Value: reason},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailure(err) {
			return fmt.Errorf("outbox row gone for event %s", event.EventID)
		}
		return storeError(err, "UpdateItem")
	}

	if status == PublishStatusFailed {
		s.logger.Warn("Event parked after repeated publish failures",
			zap.String("eventID", event.EventID),
			zap.String("eventType", event.EventType),
			zap.Int("attempts", newAttempts),
			zap.String("error", reason),
		)
	}

	return nil
}

// DeleteEvents removes all stored events for an aggregate
func (s *OutboxStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	pk, err := outboxKey(aggregateID)
	if err != nil {
		return err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	var deleteRequests []types.WriteRequest

	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return storeError(err, "Query")
		}

		for _, raw := range result.Items {
			deleteRequests = append(deleteRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": raw["PK"],
						"SK": raw["SK"],
					},
				},
			})
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return s.batchWrite(ctx, deleteRequests)
}

// batchWrite sends write requests in chunks of 25, the DynamoDB batch
// limit
func (s *OutboxStore) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += 25 {
		end := i + 25
		if end > len(requests) {
			end = len(requests)
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.tableName: requests[i:end],
			},
		}

		result, err := s.client.BatchWriteItem(ctx, input)
		if err != nil {
			return storeError(err, "BatchWriteItem")
		}

		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d outbox rows", len(result.UnprocessedItems[s.tableName]))
		}
	}

	return nil
}

// eventToItem converts a domain event to a pending outbox item
func (s *OutboxStore) eventToItem(event events.DomainEvent) (outboxItem, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return outboxItem{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	pk, err := outboxKey(event.GetAggregateID())
	if err != nil {
		return outboxItem{}, err
	}

	eventID := uuid.New().String()
	timestamp := event.GetTimestamp()

	return outboxItem{
		PK:              pk,
		SK:              outboxSortKey(timestamp, eventID),
		EntityType:      "DOMAIN_EVENT",
		EventID:         eventID,
		AggregateID:     event.GetAggregateID(),
		EventType:       event.GetEventType(),
		Payload:         string(payload),
		Timestamp:       timestamp.UTC().Format(time.RFC3339Nano),
		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,
		TTL:             timestamp.Add(outboxRetentionDays * 24 * time.Hour).Unix(),
	}, nil
}

// decodeStoredEvent rebuilds a typed domain event from its stored
// payload. Unknown types come back as a bare BaseEvent so consumers can
// still route on the type string.
func decodeStoredEvent(eventType string, payload []byte) (events.DomainEvent, error) {
	switch eventType {
	case "user.created":
		var ev events.UserCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "team.created":
		var ev events.TeamCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "team.deleted":
		var ev events.TeamDeleted
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "team.subscription_key_rotated":
		var ev events.SubscriptionKeyRotated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "member.invited":
		var ev events.MemberInvited
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "member.role_changed":
		var ev events.MemberRoleChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "member.removed":
		var ev events.MemberRemoved
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "event.created":
		var ev events.EventCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "event.updated":
		var ev events.EventUpdated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case "event.deleted":
		var ev events.EventDeleted
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		var base events.BaseEvent
		if err := json.Unmarshal(payload, &base); err != nil {
			return nil, err
		}
		return base, nil
	}
}
