package testsupport

import (
	"path/filepath"
	"testing"

	"ndarimport/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp journal path per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Remote.User = "tester@example.org"
	cfgVal.Logging.Format = "json"
	cfgVal.Journal.Path = filepath.Join(base, "journal.db")

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

// WithRemote points the test config at a fake service.
func WithRemote(remote *Remote) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = remote.URL()
	}
}

// WithJournal enables the journal at its temp path.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Journal.Path)
}
