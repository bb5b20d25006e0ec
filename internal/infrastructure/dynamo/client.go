package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-carservice-api/internal/config"
)

// counterRetryAttempts bounds SDK retries for ephemeral writes. The counter
// update already loops on conditional failures, so throttling retries stay short.
const counterRetryAttempts = 3

// NewClient creates the DynamoDB client behind the ephemeral store.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	if cfg.DynamoTables.Ephemeral == "" {
		return nil, errors.New("dynamo ephemeral backend needs a table name")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config for dynamodb: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, clientOptions(cfg)...), nil
}

func clientOptions(cfg *config.Config) []func(*dynamodb.Options) {
	opts := []func(*dynamodb.Options){
		func(o *dynamodb.Options) { o.RetryMaxAttempts = counterRetryAttempts },
	}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return opts
}
