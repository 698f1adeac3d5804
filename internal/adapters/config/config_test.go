package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))
	return path
}

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	settings, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultConfig(), settings.Engine)
	assert.Equal(t, BackendTOML, settings.History.Backend)
	assert.Equal(t, 1000, settings.History.Retain)
	assert.Equal(t, "warn", settings.Log.Level)
	assert.Equal(t, BoostMidpoint, settings.Boost.Source)
}

func TestLoadReadsConfigFromXDGDirectory(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "fb")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[engine]\nmax_foci = 3\n"), 0o600))

	settings, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Engine.MaxFoci)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t,
		"[engine]",
		"max_foci = 7",
		"attention_span = '45s'",
		"strict = true",
		"",
		"[engine.tier_boosts.critical]",
		"min = 1.2",
		"max = 3.0",
		"",
		"[history]",
		"backend = 'SQLite'",
		"path = '/tmp/fb/history.db'",
	)

	settings, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 7, settings.Engine.MaxFoci)
	assert.Equal(t, 45*time.Second, settings.Engine.AttentionSpan)
	assert.True(t, settings.Engine.Strict)
	assert.Equal(t, domain.BoostRange{Min: 1.2, Max: 3.0}, settings.Engine.TierBoosts.Critical)
	assert.Equal(t, domain.DefaultConfig().TierBoosts.High, settings.Engine.TierBoosts.High)
	assert.Equal(t, domain.DefaultConfig().Weights, settings.Engine.Weights)
	assert.Equal(t, BackendSQLite, settings.History.Backend)
	assert.Equal(t, "/tmp/fb/history.db", settings.History.Path)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "[engine]", "max_foci = 7")
	t.Setenv("FB_ENGINE_MAX_FOCI", "2")
	t.Setenv("FB_LOG_LEVEL", "debug")

	settings, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, settings.Engine.MaxFoci)
	assert.Equal(t, "debug", settings.Log.Level)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "weights do not sum to one", lines: []string{"[engine.weights]", "urgency = 0.9"}},
		{name: "thresholds out of order", lines: []string{"[engine.tier_thresholds]", "medium = 0.7"}},
		{name: "zero capacity", lines: []string{"[engine]", "max_foci = 0"}},
		{name: "unknown backend", lines: []string{"[history]", "backend = 'postgres'"}},
		{name: "negative retain", lines: []string{"[history]", "retain = -1"}},
		{name: "unknown boost source", lines: []string{"[boost]", "source = 'dice'"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(viper.New(), writeConfig(t, tt.lines...))
			require.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.toml"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	original := Settings{
		Engine:  domain.DefaultConfig(),
		History: History{Backend: BackendSQLite, Path: "/var/lib/fb/history.db", Retain: 50},
		Log:     Log{Level: "info"},
		Boost:   Boost{Source: BoostRuntime},
	}
	original.Engine.AttentionSpan = 90 * time.Second
	original.Engine.MaxFoci = 4

	data, err := Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1m30s")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
