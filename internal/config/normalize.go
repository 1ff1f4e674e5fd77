package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeAWS()
	c.normalizeTranscription()
	c.normalizeConversion()
	c.normalizeDistribution()
	c.normalizePlatforms()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Metrics.TextfilePath) != "" {
		if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
			return fmt.Errorf("metrics.textfile_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeAWS() {
	c.AWS.Region = strings.TrimSpace(c.AWS.Region)
	if c.AWS.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.AWS.Region = strings.TrimSpace(value)
		}
	}
	if c.AWS.Region == "" {
		c.AWS.Region = defaultAWSRegion
	}
	c.AWS.Endpoint = strings.TrimSpace(c.AWS.Endpoint)
	c.AWS.AccessKeyID = strings.TrimSpace(c.AWS.AccessKeyID)
	if c.AWS.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.AWS.AccessKeyID = strings.TrimSpace(value)
		}
	}
	c.AWS.SecretAccessKey = strings.TrimSpace(c.AWS.SecretAccessKey)
	if c.AWS.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.AWS.SecretAccessKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.JobPrefix = strings.TrimSpace(c.Transcription.JobPrefix)
	if c.Transcription.JobPrefix == "" {
		c.Transcription.JobPrefix = defaultTranscriptionPrefix
	}
	c.Transcription.LanguageCode = strings.TrimSpace(c.Transcription.LanguageCode)
	if c.Transcription.LanguageCode == "" {
		c.Transcription.LanguageCode = defaultTranscriptionLang
	}
	c.Transcription.MediaFormat = strings.ToLower(strings.TrimSpace(c.Transcription.MediaFormat))
	if c.Transcription.MediaFormat == "" {
		c.Transcription.MediaFormat = defaultTranscriptionFormat
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.OutputBucket = strings.TrimSpace(c.Conversion.OutputBucket)
	c.Conversion.RoleARN = strings.TrimSpace(c.Conversion.RoleARN)
	c.Conversion.Endpoint = strings.TrimSpace(c.Conversion.Endpoint)
	if len(c.Conversion.Profiles) == 0 {
		c.Conversion.Profiles = DefaultProfiles()
		return
	}
	for i := range c.Conversion.Profiles {
		c.Conversion.Profiles[i].Key = strings.TrimSpace(c.Conversion.Profiles[i].Key)
	}
}

func (c *Config) normalizeDistribution() {
	if c.Distribution.MaxParallel <= 0 {
		c.Distribution.MaxParallel = defaultMaxParallel
	}
	if c.Distribution.PresignExpirySeconds <= 0 {
		c.Distribution.PresignExpirySeconds = defaultPresignExpirySeconds
	}
	if c.Distribution.RequestTimeout <= 0 {
		c.Distribution.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizePlatforms() {
	normalizeAccount(&c.Platforms.WhatsApp, defaultWhatsAppBaseURL, "WHATSAPP_API_KEY")
	normalizeAccount(&c.Platforms.ShareChat, defaultShareChatBaseURL, "SHARECHAT_API_KEY")
	normalizeAccount(&c.Platforms.Instagram, defaultInstagramBaseURL, "INSTAGRAM_ACCESS_TOKEN")
}

func normalizeAccount(account *PlatformAccount, defaultURL, tokenEnv string) {
	account.BaseURL = strings.TrimRight(strings.TrimSpace(account.BaseURL), "/")
	if account.BaseURL == "" {
		account.BaseURL = defaultURL
	}
	account.AccountID = strings.TrimSpace(account.AccountID)
	account.Token = strings.TrimSpace(account.Token)
	if account.Token == "" {
		if value, ok := os.LookupEnv(tokenEnv); ok {
			account.Token = strings.TrimSpace(value)
		}
	}
}
