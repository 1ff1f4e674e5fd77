// Package transcribe submits transcription jobs to Amazon Transcribe.
package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"

	"sanchaar/internal/ingest"
	"sanchaar/internal/services/awsconfig"
)

// API is the subset of the Transcribe client used here.
type API interface {
	StartTranscriptionJob(ctx context.Context, params *awstranscribe.StartTranscriptionJobInput, optFns ...func(*awstranscribe.Options)) (*awstranscribe.StartTranscriptionJobOutput, error)
}

// Client adapts Amazon Transcribe to ingest.TranscriptionService.
type Client struct {
	api API
}

// New constructs a client from shared AWS configuration.
func New(awsCfg aws.Config, endpoint string) *Client {
	return NewWithAPI(awstranscribe.NewFromConfig(awsCfg, func(o *awstranscribe.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(endpoint)
	}))
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// Submit starts the job. A job that already exists under the same name is
// treated as accepted so redelivered events stay idempotent.
func (c *Client) Submit(ctx context.Context, req ingest.TranscriptionRequest) (string, error) {
	input := &awstranscribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.JobName),
		Media:                &types.Media{MediaFileUri: aws.String(req.SourceURI)},
	}
	if req.MediaFormat != "" {
		input.MediaFormat = types.MediaFormat(req.MediaFormat)
	}
	if req.LanguageCode != "" {
		input.LanguageCode = types.LanguageCode(req.LanguageCode)
	} else {
		input.IdentifyLanguage = aws.Bool(true)
	}
	if req.ShowSpeakerLabels {
		input.Settings = &types.Settings{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(int32(req.MaxSpeakerLabels)),
		}
	}

	out, err := c.api.StartTranscriptionJob(ctx, input)
	if err != nil {
		var conflict *types.ConflictException
		if errors.As(err, &conflict) {
			return req.JobName, nil
		}
		return "", fmt.Errorf("start transcription job %s: %w", req.JobName, err)
	}
	if out != nil && out.TranscriptionJob != nil && out.TranscriptionJob.TranscriptionJobName != nil {
		return aws.ToString(out.TranscriptionJob.TranscriptionJobName), nil
	}
	return req.JobName, nil
}
