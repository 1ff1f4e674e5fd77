package config

const (
	defaultConfigPath           = "~/.config/sanchaar/config.toml"
	defaultDataDir              = "~/.local/share/sanchaar"
	defaultLogDir               = "~/.local/share/sanchaar/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultAWSRegion            = "ap-south-1"
	defaultTranscriptionPrefix  = "sanchaar"
	defaultTranscriptionLang    = "hi-IN"
	defaultTranscriptionFormat  = "mp3"
	defaultMaxSpeakerLabels     = 2
	defaultModerationConfidence = 75
	defaultMaxParallel          = 4
	defaultPresignExpirySeconds = 3600
	defaultRequestTimeout       = 30
	defaultWhatsAppBaseURL      = "https://graph.facebook.com/v18.0"
	defaultShareChatBaseURL     = "https://api.sharechat.com/v2"
	defaultInstagramBaseURL     = "https://graph.facebook.com/v18.0"
)

// DefaultProfiles returns the aspect-ratio profiles shipped by default.
func DefaultProfiles() []Profile {
	return []Profile{
		{Key: "9:16", Width: 720, Height: 1280, Bitrate: 2_500_000},
		{Key: "1:1", Width: 1080, Height: 1080, Bitrate: 4_000_000},
		{Key: "16:9", Width: 1920, Height: 1080, Bitrate: 8_000_000},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		AWS: AWS{
			Region: defaultAWSRegion,
		},
		Transcription: Transcription{
			JobPrefix:         defaultTranscriptionPrefix,
			LanguageCode:      defaultTranscriptionLang,
			MediaFormat:       defaultTranscriptionFormat,
			ShowSpeakerLabels: true,
			MaxSpeakerLabels:  defaultMaxSpeakerLabels,
		},
		Moderation: Moderation{
			MinConfidence: defaultModerationConfidence,
		},
		Conversion: Conversion{
			Profiles: DefaultProfiles(),
		},
		Distribution: Distribution{
			MaxParallel:          defaultMaxParallel,
			PresignExpirySeconds: defaultPresignExpirySeconds,
			RequestTimeout:       defaultRequestTimeout,
		},
		Platforms: Platforms{
			WhatsApp:  PlatformAccount{BaseURL: defaultWhatsAppBaseURL},
			ShareChat: PlatformAccount{BaseURL: defaultShareChatBaseURL},
			Instagram: PlatformAccount{BaseURL: defaultInstagramBaseURL},
		},
	}
}
