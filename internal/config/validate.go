package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateModeration(); err != nil {
		return err
	}
	if err := c.validateProfiles(); err != nil {
		return err
	}
	if err := c.validateDistribution(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.MaxSpeakerLabels < 0 {
		return errors.New("transcription.max_speaker_labels must be non-negative")
	}
	if c.Transcription.ShowSpeakerLabels && c.Transcription.MaxSpeakerLabels < 2 {
		return errors.New("transcription.max_speaker_labels must be at least 2 when show_speaker_labels is true")
	}
	return nil
}

func (c *Config) validateModeration() error {
	if c.Moderation.MinConfidence < 0 || c.Moderation.MinConfidence > 100 {
		return errors.New("moderation.min_confidence must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateProfiles() error {
	seen := make(map[string]struct{}, len(c.Conversion.Profiles))
	for i, profile := range c.Conversion.Profiles {
		key := strings.TrimSpace(profile.Key)
		if key == "" {
			return fmt.Errorf("conversion.profiles[%d].key must be set", i)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("conversion.profiles: duplicate key %q", key)
		}
		seen[key] = struct{}{}
		if profile.Width <= 0 || profile.Height <= 0 {
			return fmt.Errorf("conversion.profiles[%s]: width and height must be positive", key)
		}
		if profile.Bitrate <= 0 {
			return fmt.Errorf("conversion.profiles[%s]: bitrate must be positive", key)
		}
	}
	return nil
}

func (c *Config) validateDistribution() error {
	if c.Distribution.MaxParallel < 1 {
		return errors.New("distribution.max_parallel must be at least 1")
	}
	return nil
}
