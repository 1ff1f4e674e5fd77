// Package mediaconvert submits rendition jobs to AWS Elemental MediaConvert.
package mediaconvert

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmediaconvert "github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"sanchaar/internal/rendition"
	"sanchaar/internal/services/awsconfig"
)

// API is the subset of the MediaConvert client used here.
type API interface {
	CreateJob(ctx context.Context, params *awsmediaconvert.CreateJobInput, optFns ...func(*awsmediaconvert.Options)) (*awsmediaconvert.CreateJobOutput, error)
}

// Client adapts MediaConvert to rendition.Converter.
type Client struct {
	api API
}

// New constructs a client from shared AWS configuration. endpoint is the
// account-specific MediaConvert endpoint when one is required.
func New(awsCfg aws.Config, endpoint string) *Client {
	return NewWithAPI(awsmediaconvert.NewFromConfig(awsCfg, func(o *awsmediaconvert.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(endpoint)
	}))
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api API) *Client {
	return &Client{api: api}
}

// SubmitJob creates the job and returns its id.
func (c *Client) SubmitJob(ctx context.Context, spec rendition.JobSpec) (string, error) {
	out, err := c.api.CreateJob(ctx, &awsmediaconvert.CreateJobInput{
		Role:     aws.String(spec.Role),
		Settings: JobSettings(spec),
		UserMetadata: map[string]string{
			"aspect_ratio": spec.Ratio,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create %s job: %w", spec.Ratio, err)
	}
	if out == nil || out.Job == nil || aws.ToString(out.Job.Id) == "" {
		return "", errors.New("create job: response carried no job id")
	}
	return aws.ToString(out.Job.Id), nil
}

// JobSettings translates a job spec into MediaConvert settings.
func JobSettings(spec rendition.JobSpec) *types.JobSettings {
	return &types.JobSettings{
		Inputs: []types.Input{{
			FileInput: aws.String(spec.Input.FileURI),
			AudioSelectors: map[string]types.AudioSelector{
				spec.Input.AudioSelector: {DefaultSelection: types.AudioDefaultSelectionDefault},
			},
			VideoSelector:  &types.VideoSelector{},
			TimecodeSource: types.InputTimecodeSource(spec.Input.TimecodeSource),
		}},
		OutputGroups: []types.OutputGroup{{
			Name: aws.String(spec.OutputGroup.Name),
			OutputGroupSettings: &types.OutputGroupSettings{
				Type: types.OutputGroupTypeFileGroupSettings,
				FileGroupSettings: &types.FileGroupSettings{
					Destination: aws.String(spec.OutputGroup.Destination),
				},
			},
			Outputs: []types.Output{{
				ContainerSettings: &types.ContainerSettings{Container: types.ContainerTypeMp4},
				VideoDescription: &types.VideoDescription{
					Width:  aws.Int32(int32(spec.Video.Width)),
					Height: aws.Int32(int32(spec.Video.Height)),
					CodecSettings: &types.VideoCodecSettings{
						Codec: types.VideoCodec(spec.Video.Codec),
						H264Settings: &types.H264Settings{
							RateControlMode:      types.H264RateControlMode(spec.Video.RateControlMode),
							Bitrate:              aws.Int32(int32(spec.Video.Bitrate)),
							FramerateControl:     types.H264FramerateControlSpecified,
							FramerateNumerator:   aws.Int32(int32(spec.Video.FramerateNumerator)),
							FramerateDenominator: aws.Int32(int32(spec.Video.FramerateDenominator)),
						},
					},
				},
				AudioDescriptions: []types.AudioDescription{{
					CodecSettings: &types.AudioCodecSettings{
						Codec: types.AudioCodec(spec.Audio.Codec),
						AacSettings: &types.AacSettings{
							Bitrate:    aws.Int32(int32(spec.Audio.Bitrate)),
							SampleRate: aws.Int32(int32(spec.Audio.SampleRate)),
						},
					},
				}},
			}},
		}},
	}
}
