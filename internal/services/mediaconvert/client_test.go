package mediaconvert_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmediaconvert "github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"sanchaar/internal/objectstore"
	"sanchaar/internal/rendition"
	"sanchaar/internal/services/mediaconvert"
)

type fakeAPI struct {
	input *awsmediaconvert.CreateJobInput
	err   error
}

func (f *fakeAPI) CreateJob(_ context.Context, params *awsmediaconvert.CreateJobInput, _ ...func(*awsmediaconvert.Options)) (*awsmediaconvert.CreateJobOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &awsmediaconvert.CreateJobOutput{Job: &types.Job{Id: aws.String("job-123")}}, nil
}

func sampleSpec(t *testing.T) rendition.JobSpec {
	t.Helper()
	profile, ok := rendition.DefaultProfiles().Lookup("9:16")
	if !ok {
		t.Fatal("missing 9:16 profile")
	}
	return rendition.BuildJob(profile, objectstore.Locator{Bucket: "uploads", Key: "a.mp4"}, "out", "c-1", "arn:role")
}

func TestSubmitJobBuildsSettings(t *testing.T) {
	api := &fakeAPI{}
	client := mediaconvert.NewWithAPI(api)

	id, err := client.SubmitJob(context.Background(), sampleSpec(t))
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}
	if id != "job-123" {
		t.Fatalf("unexpected id %q", id)
	}
	in := api.input
	if aws.ToString(in.Role) != "arn:role" {
		t.Fatalf("expected role, got %v", in.Role)
	}
	input := in.Settings.Inputs[0]
	if input.TimecodeSource != types.InputTimecodeSourceZerobased {
		t.Fatalf("unexpected timecode source %s", input.TimecodeSource)
	}
	group := in.Settings.OutputGroups[0]
	if aws.ToString(group.Name) != "Output_9:16" || aws.ToString(group.OutputGroupSettings.FileGroupSettings.Destination) != "s3://out/9:16/c-1/" {
		t.Fatalf("unexpected output group %+v", group)
	}
	h264 := group.Outputs[0].VideoDescription.CodecSettings.H264Settings
	if h264.RateControlMode != types.H264RateControlModeCbr || aws.ToInt32(h264.Bitrate) != 2_500_000 {
		t.Fatalf("unexpected h264 settings %+v", h264)
	}
	if aws.ToInt32(h264.FramerateNumerator) != 30 || aws.ToInt32(h264.FramerateDenominator) != 1 {
		t.Fatalf("unexpected framerate %+v", h264)
	}
	aac := group.Outputs[0].AudioDescriptions[0].CodecSettings.AacSettings
	if aws.ToInt32(aac.Bitrate) != 128000 || aws.ToInt32(aac.SampleRate) != 48000 {
		t.Fatalf("unexpected aac settings %+v", aac)
	}
}

func TestSubmitJobError(t *testing.T) {
	client := mediaconvert.NewWithAPI(&fakeAPI{err: errors.New("too many requests")})
	if _, err := client.SubmitJob(context.Background(), sampleSpec(t)); err == nil {
		t.Fatal("expected error")
	}
}
