// Package rekognition runs face, text and moderation-label detection with
// Amazon Rekognition.
package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"sanchaar/internal/objectstore"
	"sanchaar/internal/services/awsconfig"
)

// API is the subset of the Rekognition client used here.
type API interface {
	DetectFaces(ctx context.Context, params *awsrekognition.DetectFacesInput, optFns ...func(*awsrekognition.Options)) (*awsrekognition.DetectFacesOutput, error)
	DetectText(ctx context.Context, params *awsrekognition.DetectTextInput, optFns ...func(*awsrekognition.Options)) (*awsrekognition.DetectTextOutput, error)
	DetectModerationLabels(ctx context.Context, params *awsrekognition.DetectModerationLabelsInput, optFns ...func(*awsrekognition.Options)) (*awsrekognition.DetectModerationLabelsOutput, error)
}

// Client adapts Rekognition to moderation.Detector.
type Client struct {
	api API
}

// New constructs a client from shared AWS configuration.
func New(awsCfg aws.Config, endpoint string) *Client {
	return NewWithAPI(awsrekognition.NewFromConfig(awsCfg, func(o *awsrekognition.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(endpoint)
	}))
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

func image(media objectstore.Locator) *types.Image {
	return &types.Image{S3Object: &types.S3Object{
		Bucket: aws.String(media.Bucket),
		Name:   aws.String(media.Key),
	}}
}

// DetectFaces returns the number of faces found.
func (c *Client) DetectFaces(ctx context.Context, media objectstore.Locator) (int, error) {
	out, err := c.api.DetectFaces(ctx, &awsrekognition.DetectFacesInput{
		Image:      image(media),
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return 0, fmt.Errorf("detect faces in %s: %w", media, err)
	}
	return len(out.FaceDetails), nil
}

// DetectText returns the number of text detections.
func (c *Client) DetectText(ctx context.Context, media objectstore.Locator) (int, error) {
	out, err := c.api.DetectText(ctx, &awsrekognition.DetectTextInput{Image: image(media)})
	if err != nil {
		return 0, fmt.Errorf("detect text in %s: %w", media, err)
	}
	return len(out.TextDetections), nil
}

// unnamedLabel stands in for a returned label that carries no name.
const unnamedLabel = "unnamed"

// DetectModerationLabels returns one entry per label at or above
// minConfidence. A label without a name is reported by its parent name, or
// as "unnamed", so it still counts against the item.
func (c *Client) DetectModerationLabels(ctx context.Context, media objectstore.Locator, minConfidence float64) ([]string, error) {
	out, err := c.api.DetectModerationLabels(ctx, &awsrekognition.DetectModerationLabelsInput{
		Image:         image(media),
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		return nil, fmt.Errorf("detect moderation labels in %s: %w", media, err)
	}
	labels := make([]string, 0, len(out.ModerationLabels))
	for _, label := range out.ModerationLabels {
		name := aws.ToString(label.Name)
		if name == "" {
			name = aws.ToString(label.ParentName)
		}
		if name == "" {
			name = unnamedLabel
		}
		labels = append(labels, name)
	}
	return labels, nil
}
