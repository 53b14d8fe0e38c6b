package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// VerifyTableSchema checks at startup that the target table matches the
// single-table layout the repositories assume: a PK/SK base key and a
// GSI1 index keyed on GSI1PK/GSI1SK. Failing fast here beats hunting
// down query errors after deploy.
func VerifyTableSchema(ctx context.Context, client *dynamodb.Client, tableName string, logger *zap.Logger) error {
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return storeError(err, "DescribeTable")
	}

	table := out.Table
	if err := verifyKeySchema(table.KeySchema, "PK", "SK"); err != nil {
		return fmt.Errorf("table %s: %w", tableName, err)
	}

	var index *types.GlobalSecondaryIndexDescription
	for i := range table.GlobalSecondaryIndexes {
		if aws.ToString(table.GlobalSecondaryIndexes[i].IndexName) == gsi1Name {
			index = &table.GlobalSecondaryIndexes[i]
			break
		}
	}
	if index == nil {
		return fmt.Errorf("table %s: missing index %s", tableName, gsi1Name)
	}
	if err := verifyKeySchema(index.KeySchema, "GSI1PK", "GSI1SK"); err != nil {
		return fmt.Errorf("table %s index %s: %w", tableName, gsi1Name, err)
	}

	logger.Info("Table schema verified",
		zap.String("table", tableName),
		zap.String("index", gsi1Name),
	)

	return nil
}

func verifyKeySchema(schema []types.KeySchemaElement, hashName, rangeName string) error {
	var hash, rang string
	for _, el := range schema {
		switch el.KeyType {
		case types.KeyTypeHash:
			hash = aws.ToString(el.AttributeName)
		case types.KeyTypeRange:
			rang = aws.ToString(el.AttributeName)
		}
	}

	if hash != hashName {
		return fmt.Errorf("hash key is %q, want %q", hash, hashName)
	}
	if rang != rangeName {
		return fmt.Errorf("range key is %q, want %q", rang, rangeName)
	}
	return nil
}
