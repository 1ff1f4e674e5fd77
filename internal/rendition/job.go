package rendition

import "sanchaar/internal/objectstore"

// Fixed encoding parameters shared by every rendition.
const (
	VideoCodec           = "H_264"
	RateControlMode      = "CBR"
	FramerateNumerator   = 30
	FramerateDenominator = 1
	AudioCodec           = "AAC"
	AudioBitrate         = 128000
	AudioSampleRate      = 48000
	TimecodeZeroBased    = "ZEROBASED"
	DefaultAudioSelector = "Audio Selector 1"
	OutputExtension      = ".mp4"
)

// JobSpec describes one conversion job producing a single rendition.
type JobSpec struct {
	Ratio       string
	Role        string
	Input       InputSpec
	OutputGroup OutputGroupSpec
	Video       VideoSpec
	Audio       AudioSpec
}

// InputSpec is the single audio+video input of a job.
type InputSpec struct {
	Source         objectstore.Locator
	FileURI        string
	AudioSelector  string
	TimecodeSource string
}

// OutputGroupSpec is a file-group output namespaced by ratio.
type OutputGroupSpec struct {
	Name        string
	Destination string
}

// VideoSpec configures the video track.
type VideoSpec struct {
	Codec                string
	Width                int
	Height               int
	Bitrate              int
	RateControlMode      string
	FramerateNumerator   int
	FramerateDenominator int
}

// AudioSpec configures the audio track.
type AudioSpec struct {
	Codec      string
	Bitrate    int
	SampleRate int
}

// BuildJob constructs the job for one profile. Outputs land under
// s3://<outputBucket>/<ratio>/<contentID>/.
func BuildJob(profile Profile, source objectstore.Locator, outputBucket, contentID, role string) JobSpec {
	return JobSpec{
		Ratio: profile.Key,
		Role:  role,
		Input: InputSpec{
			Source:         source,
			FileURI:        source.String(),
			AudioSelector:  DefaultAudioSelector,
			TimecodeSource: TimecodeZeroBased,
		},
		OutputGroup: OutputGroupSpec{
			Name:        "Output_" + profile.Key,
			Destination: objectstore.Prefix(outputBucket, profile.Key, contentID),
		},
		Video: VideoSpec{
			Codec:                VideoCodec,
			Width:                profile.Width,
			Height:               profile.Height,
			Bitrate:              profile.Bitrate,
			RateControlMode:      RateControlMode,
			FramerateNumerator:   FramerateNumerator,
			FramerateDenominator: FramerateDenominator,
		},
		Audio: AudioSpec{
			Codec:      AudioCodec,
			Bitrate:    AudioBitrate,
			SampleRate: AudioSampleRate,
		},
	}
}

// ExpectedOutput is the media locator the job will write: the destination
// prefix followed by the source basename.
func (j JobSpec) ExpectedOutput() string {
	return j.OutputGroup.Destination + j.Input.Source.Basename() + OutputExtension
}
