package testsupport

import (
	"path/filepath"
	"testing"

	"sanchaar/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.AWS.AccessKeyID = "test"
	cfgVal.AWS.SecretAccessKey = "test"
	cfgVal.Conversion.OutputBucket = "renditions"
	cfgVal.Conversion.RoleARN = "arn:aws:iam::000000000000:role/convert"
	cfgVal.Platforms.WhatsApp.AccountID = "phone-1"
	cfgVal.Platforms.WhatsApp.Token = "test"
	cfgVal.Platforms.ShareChat.Token = "test"
	cfgVal.Platforms.Instagram.AccountID = "ig-1"
	cfgVal.Platforms.Instagram.Token = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPlatformBaseURL points every platform account at baseURL, usually an
// httptest server.
func WithPlatformBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Platforms.WhatsApp.BaseURL = baseURL
		b.cfg.Platforms.ShareChat.BaseURL = baseURL
		b.cfg.Platforms.Instagram.BaseURL = baseURL
	}
}

// WithMaxParallel overrides the distribution fan-out limit.
func WithMaxParallel(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Distribution.MaxParallel = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
