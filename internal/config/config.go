package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// AWS contains shared settings for the AWS-backed collaborators.
// Static keys are optional; the default credential chain applies when empty.
type AWS struct {
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// Transcription contains options sent with every transcription request.
type Transcription struct {
	JobPrefix         string `toml:"job_prefix"`
	LanguageCode      string `toml:"language_code"`
	MediaFormat       string `toml:"media_format"`
	ShowSpeakerLabels bool   `toml:"show_speaker_labels"`
	MaxSpeakerLabels  int    `toml:"max_speaker_labels"`
}

// Moderation contains the moderation gate thresholds.
type Moderation struct {
	// MinConfidence is the percentage (0-100) a moderation label must reach
	// to be reported. Default: 75
	MinConfidence float64 `toml:"min_confidence"`
}

// Profile describes one aspect-ratio rendition.
type Profile struct {
	Key     string `toml:"key"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Bitrate int    `toml:"bitrate"`
}

// Conversion contains configuration for the media conversion service.
type Conversion struct {
	OutputBucket string    `toml:"output_bucket"`
	RoleARN      string    `toml:"role_arn"`
	Endpoint     string    `toml:"endpoint"`
	Profiles     []Profile `toml:"profiles"`
}

// Distribution contains fan-out tuning.
type Distribution struct {
	MaxParallel          int `toml:"max_parallel"`
	PresignExpirySeconds int `toml:"presign_expiry_seconds"`
	RequestTimeout       int `toml:"request_timeout"`
}

// PlatformAccount holds the endpoint and credentials for one platform.
type PlatformAccount struct {
	BaseURL   string `toml:"base_url"`
	AccountID string `toml:"account_id"`
	Token     string `toml:"token"`
}

// Platforms groups the per-platform accounts.
type Platforms struct {
	WhatsApp  PlatformAccount `toml:"whatsapp"`
	ShareChat PlatformAccount `toml:"sharechat"`
	Instagram PlatformAccount `toml:"instagram"`
}

// Metrics contains configuration for metrics export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Config encapsulates all configuration values for Sanchaar.
//
// Configuration sections by subsystem:
//   - Paths: content store and log directories
//   - Logging: log format and level
//   - AWS: region, endpoint override and optional static credentials
//   - Transcription: job naming and transcription options
//   - Moderation: moderation label confidence threshold
//   - Conversion: output bucket, role, and aspect-ratio profiles
//   - Distribution: fan-out parallelism, presigned URL expiry, HTTP timeout
//   - Platforms: per-platform endpoints and credentials
//   - Metrics: Prometheus textfile export
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	AWS           AWS           `toml:"aws"`
	Transcription Transcription `toml:"transcription"`
	Moderation    Moderation    `toml:"moderation"`
	Conversion    Conversion    `toml:"conversion"`
	Distribution  Distribution  `toml:"distribution"`
	Platforms     Platforms     `toml:"platforms"`
	Metrics       Metrics       `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and secrets resolved from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Profiles from the file replace the defaults rather than extending them.
		cfg.Conversion.Profiles = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sanchaar.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the store and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the SQLite content store location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "content.db")
}

// PlatformAccount returns the configured account for a platform key.
// Credentials are resolved once at load time; later environment changes are
// not observed.
func (c *Config) PlatformAccount(platform string) (PlatformAccount, bool) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "whatsapp":
		return c.Platforms.WhatsApp, true
	case "sharechat":
		return c.Platforms.ShareChat, true
	case "instagram":
		return c.Platforms.Instagram, true
	default:
		return PlatformAccount{}, false
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
