package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sanchaar/internal/config"
)

func TestLoadDefaultConfigUsesEnvSecretsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("WHATSAPP_API_KEY", "wa-token")
	t.Setenv("INSTAGRAM_ACCESS_TOKEN", "ig-token")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "sanchaar")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.StorePath() != filepath.Join(wantData, "content.db") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
	if cfg.Platforms.WhatsApp.Token != "wa-token" {
		t.Fatalf("expected whatsapp token from env, got %q", cfg.Platforms.WhatsApp.Token)
	}
	if cfg.Platforms.Instagram.Token != "ig-token" {
		t.Fatalf("expected instagram token from env, got %q", cfg.Platforms.Instagram.Token)
	}
	if cfg.Moderation.MinConfidence != 75 {
		t.Fatalf("expected moderation threshold 75, got %v", cfg.Moderation.MinConfidence)
	}
	if cfg.Transcription.LanguageCode != "hi-IN" || cfg.Transcription.MaxSpeakerLabels != 2 {
		t.Fatalf("unexpected transcription defaults: %+v", cfg.Transcription)
	}
	if len(cfg.Conversion.Profiles) != 3 {
		t.Fatalf("expected three default profiles, got %d", len(cfg.Conversion.Profiles))
	}
}

func TestLoadFileProfilesReplaceDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SHARECHAT_API_KEY", "from-env")

	configPath := filepath.Join(tempHome, "config.toml")
	contents := `
[paths]
data_dir = "~/data"

[conversion]
output_bucket = " renditions "

[[conversion.profiles]]
key = "4:5"
width = 1080
height = 1350
bitrate = 5000000

[platforms.sharechat]
token = "from-file"
base_url = "https://sharechat.test/v2/"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "data") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Conversion.OutputBucket != "renditions" {
		t.Fatalf("expected trimmed bucket, got %q", cfg.Conversion.OutputBucket)
	}
	if len(cfg.Conversion.Profiles) != 1 || cfg.Conversion.Profiles[0].Key != "4:5" {
		t.Fatalf("expected file profiles to replace defaults, got %+v", cfg.Conversion.Profiles)
	}
	account, ok := cfg.PlatformAccount("ShareChat")
	if !ok {
		t.Fatal("expected sharechat account")
	}
	if account.Token != "from-file" {
		t.Fatalf("expected file token to win over env, got %q", account.Token)
	}
	if account.BaseURL != "https://sharechat.test/v2" {
		t.Fatalf("expected trailing slash trimmed, got %q", account.BaseURL)
	}
	if _, ok := cfg.PlatformAccount("myspace"); ok {
		t.Fatal("expected unknown platform to be absent")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"confidence", func(c *config.Config) { c.Moderation.MinConfidence = 120 }, "min_confidence"},
		{"duplicate profile", func(c *config.Config) {
			c.Conversion.Profiles = append(c.Conversion.Profiles, config.Profile{Key: "9:16", Width: 1, Height: 1, Bitrate: 1})
		}, "duplicate"},
		{"zero width", func(c *config.Config) { c.Conversion.Profiles[0].Width = 0 }, "width"},
		{"parallel", func(c *config.Config) { c.Distribution.MaxParallel = 0 }, "max_parallel"},
		{"speakers", func(c *config.Config) { c.Transcription.MaxSpeakerLabels = 1 }, "max_speaker_labels"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if len(cfg.Conversion.Profiles) != 3 {
		t.Fatalf("expected sample to list three profiles, got %d", len(cfg.Conversion.Profiles))
	}
}
