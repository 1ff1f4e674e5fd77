package objectstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"sanchaar/internal/services"
)

const defaultPresignExpiry = 15 * time.Minute

// Presigner turns s3:// rendition locators into time-limited HTTPS URLs that
// platform APIs can fetch.
type Presigner struct {
	client *s3.PresignClient
	expiry time.Duration
}

// NewPresigner builds a presigner from shared AWS configuration. endpoint
// overrides the S3 endpoint for S3-compatible storage.
func NewPresigner(awsCfg aws.Config, endpoint string, expiry time.Duration) *Presigner {
	var opts []func(*s3.Options)
	if endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	return &Presigner{
		client: s3.NewPresignClient(s3.NewFromConfig(awsCfg, opts...)),
		expiry: expiry,
	}
}

// ResolveURL returns a presigned GET URL for s3:// locators. HTTP(S) URLs are
// returned unchanged.
func (p *Presigner) ResolveURL(ctx context.Context, uri string) (string, error) {
	if strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "http://") {
		return uri, nil
	}
	loc, err := ParseLocator(uri)
	if err != nil {
		return "", err
	}
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", services.External("objectstore", "presign", fmt.Errorf("presign %s: %w", loc, err))
	}
	return req.URL, nil
}
