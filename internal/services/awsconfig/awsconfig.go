// Package awsconfig builds the shared AWS configuration used by every
// AWS-backed collaborator.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"sanchaar/internal/config"
)

// Load resolves region and credentials. Static keys are used when both are
// configured; otherwise the default credential chain applies.
func Load(ctx context.Context, cfg config.AWS) (aws.Config, error) {
	var opts []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// Endpoint returns a pointer suitable for a client's BaseEndpoint option, or
// nil when no override is configured.
func Endpoint(value string) *string {
	if value == "" {
		return nil
	}
	return aws.String(value)
}
