package dynamo

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

const (
	attrKey       = "k"
	attrValue     = "v"
	attrCount     = "n"
	attrExpiresAt = "expires_at"

	maxIncrementAttempts = 3
)

// itemAPI is the subset of *dynamodb.Client used by EphemeralStore.
type itemAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type entry struct {
	Key       string `dynamodbav:"k"`
	Value     string `dynamodbav:"v,omitempty"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// EphemeralStore keeps TTL-bound keys in a single DynamoDB table.
// DynamoDB deletes expired items lazily, so every read also checks expires_at.
// PK: k
type EphemeralStore struct {
	client    itemAPI
	tableName string
	now       func() time.Time
}

func NewEphemeralStore(client itemAPI, tableName string) *EphemeralStore {
	return &EphemeralStore{client: client, tableName: tableName, now: time.Now}
}

func (s *EphemeralStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            strKey(attrKey, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}
	var e entry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return "", false, fmt.Errorf("unmarshal ephemeral item %s: %w", key, err)
	}
	if e.ExpiresAt <= s.now().Unix() {
		return "", false, nil
	}
	if n, ok := out.Item[attrCount]; ok {
		if nv, ok := n.(*types.AttributeValueMemberN); ok {
			return nv.Value, true, nil
		}
	}
	return e.Value, true, nil
}

func (s *EphemeralStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	item, err := attributevalue.MarshalMap(entry{Key: key, Value: value, ExpiresAt: s.now().Add(ttl).Unix()})
	if err != nil {
		return fmt.Errorf("marshal ephemeral item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return unavailable("put", key, err)
	}
	return nil
}

func (s *EphemeralStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       strKey(attrKey, key),
		})
		if err != nil {
			return unavailable("delete", key, err)
		}
	}
	return nil
}

// IncrementAndExpire adds one to a live counter and re-arms its expiry in a
// single conditional UpdateItem. An absent or expired counter is replaced by a
// fresh one through a conditional PutItem; losing that race retries the update.
func (s *EphemeralStore) IncrementAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var ccf *types.ConditionalCheckFailedException
	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		now := s.now()
		exp := now.Add(ttl).Unix()
		names := map[string]string{"#k": attrKey, "#n": attrCount, "#e": attrExpiresAt}

		out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                aws.String(s.tableName),
			Key:                      strKey(attrKey, key),
			UpdateExpression:         aws.String("ADD #n :one SET #e = :exp"),
			ConditionExpression:      aws.String("attribute_exists(#k) AND #e > :now"),
			ExpressionAttributeNames: names,
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one": numAttr(1),
				":exp": numAttr(exp),
				":now": numAttr(now.Unix()),
			},
			ReturnValues: types.ReturnValueUpdatedNew,
		})
		if err == nil {
			n, err := numValue(out.Attributes, attrCount)
			if err != nil {
				return 0, fmt.Errorf("increment %s: %w", key, err)
			}
			return n, nil
		}
		if !errors.As(err, &ccf) {
			return 0, unavailable("update", key, err)
		}

		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item: map[string]types.AttributeValue{
				attrKey:       &types.AttributeValueMemberS{Value: key},
				attrCount:     numAttr(1),
				attrExpiresAt: numAttr(exp),
			},
			ConditionExpression:      aws.String("attribute_not_exists(#k) OR #e <= :now"),
			ExpressionAttributeNames: map[string]string{"#k": attrKey, "#e": attrExpiresAt},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": numAttr(now.Unix()),
			},
		})
		if err == nil {
			return 1, nil
		}
		if !errors.As(err, &ccf) {
			return 0, unavailable("put", key, err)
		}
	}
	return 0, unavailable("increment", key, errors.New("too much contention"))
}
