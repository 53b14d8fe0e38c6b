package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DistributedRateLimiter implements rate limiting using DynamoDB as the state store.
// Counters live in the application table as RATELIMIT# rows with PK equal to SK,
// so the limit holds across Lambda invocations.
type DistributedRateLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
	keyPrefix string
}

// RateLimitEntry represents a rate limit entry in DynamoDB
type RateLimitEntry struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Count     int       `dynamodbav:"Count"`
	WindowEnd time.Time `dynamodbav:"WindowEnd"`
	TTL       int64     `dynamodbav:"TTL"`
}

// NewDistributedIPRateLimiter creates a rate limiter for IP addresses
func NewDistributedIPRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     requestsPerMinute,
		window:    time.Minute,
		keyPrefix: "IP",
	}
}

// NewDistributedUserRateLimiter creates a rate limiter for user IDs
func NewDistributedUserRateLimiter(client *dynamodb.Client, tableName string, requestsPerMinute int) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     requestsPerMinute,
		window:    time.Minute,
		keyPrefix: "USER",
	}
}

// NewDistributedRateLimiter creates a generic distributed rate limiter
func NewDistributedRateLimiter(client *dynamodb.Client, tableName string, limit int, window time.Duration, keyPrefix string) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

// rowKey builds the counter key for the window containing now
func (r *DistributedRateLimiter) rowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("RATELIMIT#%s#%s#%d", r.keyPrefix, key, windowStart.Unix())
}

// Allow checks if a request is allowed under the rate limit
func (r *DistributedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		// No store configured; allow everything in local development
		return true, nil
	}

	now := time.Now()
	windowStart := now.Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	pk := r.rowKey(key, windowStart)

	// Atomic increment, conditioned on the counter being below the limit.
	// The condition failing is the limit firing, not an error.
	update := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :incr, WindowEnd = :window_end, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
			"#ttl":   "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":       &types.AttributeValueMemberN{Value: "0"},
			":incr":       &types.AttributeValueMemberN{Value: "1"},
			":limit":      &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", r.limit)},
			":window_end": &types.AttributeValueMemberS{Value: windowEnd.Format(time.RFC3339)},
			":ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", windowEnd.Add(time.Hour).Unix())},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, update)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		// Fail open on store errors so a degraded table never blocks traffic
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}

	var entry RateLimitEntry
	if err := attributevalue.UnmarshalMap(result.Attributes, &entry); err != nil {
		return true, fmt.Errorf("failed to parse rate limit entry (failing open): %w", err)
	}

	return entry.Count <= r.limit, nil
}

// GetRemaining returns the number of requests remaining in the current window
func (r *DistributedRateLimiter) GetRemaining(ctx context.Context, key string) (int, time.Duration, error) {
	if r.client == nil {
		return r.limit, r.window, nil
	}

	now := time.Now()
	windowStart := now.Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	pk := r.rowKey(key, windowStart)

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return r.limit, time.Until(windowEnd), nil
	}
	if result.Item == nil {
		return r.limit, time.Until(windowEnd), nil
	}

	var entry RateLimitEntry
	if err := attributevalue.UnmarshalMap(result.Item, &entry); err != nil {
		return r.limit, time.Until(windowEnd), fmt.Errorf("failed to parse rate limit entry: %w", err)
	}

	remaining := r.limit - entry.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, time.Until(entry.WindowEnd), nil
}

// Reset clears the rate limit for a given key
func (r *DistributedRateLimiter) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}

	windowStart := time.Now().Truncate(r.window)
	pk := r.rowKey(key, windowStart)

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: pk},
		},
	})
	return err
}

// GetLimit returns the configured rate limit
func (r *DistributedRateLimiter) GetLimit() int {
	return r.limit
}

// GetWindow returns the configured time window
func (r *DistributedRateLimiter) GetWindow() time.Duration {
	return r.window
}

// SetHeaders adds rate limit headers to an HTTP response
func (r *DistributedRateLimiter) SetHeaders(ctx context.Context, key string, headers map[string]string) error {
	remaining, resetIn, err := r.GetRemaining(ctx, key)
	if err != nil {
		return err
	}

	headers["X-RateLimit-Limit"] = fmt.Sprintf("%d", r.limit)
	headers["X-RateLimit-Remaining"] = fmt.Sprintf("%d", remaining)
	headers["X-RateLimit-Reset"] = fmt.Sprintf("%d", time.Now().Add(resetIn).Unix())
	return nil
}
