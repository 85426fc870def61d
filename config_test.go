package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"no rounds", func(c *Config) { c.maxRounds = 0 }, "max rounds"},
		{"zero round duration", func(c *Config) { c.roundDuration = 0 }, "round duration"},
		{"negative reveal delay", func(c *Config) { c.revealDelay = -time.Second }, "reveal delay"},
		{"negative room timeout", func(c *Config) { c.roomTimeout = -time.Second }, "room timeout"},
		{"disabled room timeout", func(c *Config) { c.roomTimeout = 0 }, ""},
		{"bad log level", func(c *Config) { c.logLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 6, cfg.maxRounds)
	assert.Equal(t, time.Minute, cfg.roundDuration)
	assert.Equal(t, 5*time.Second, cfg.revealDelay)
	assert.Equal(t, time.Hour, cfg.roomTimeout)
	assert.Equal(t, "info", cfg.logLevel)
	assert.Empty(t, cfg.allowedOrigins)
	assert.NoError(t, cfg.validate())
}

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("EMOJIGUESSER_PORT", "9090")
	t.Setenv("EMOJIGUESSER_MAX_ROUNDS", "3")
	t.Setenv("EMOJIGUESSER_ROUND_DURATION", "30s")
	t.Setenv("EMOJIGUESSER_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 3, cfg.maxRounds)
	assert.Equal(t, 30*time.Second, cfg.roundDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.allowedOrigins)

	s := cfg.settings()
	assert.Equal(t, 3, s.MaxRounds)
	assert.Equal(t, 30*time.Second, s.RoundDuration)
	assert.Equal(t, 2, s.MinPlayers)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("EMOJIGUESSER_PORT", "9090")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--port", "7070", "--round_duration", "45s"}))

	assert.Equal(t, 7070, cfg.port)
	assert.Equal(t, 45*time.Second, cfg.roundDuration)
}

func TestNewLogger(t *testing.T) {
	cfg := testConfig()

	log, err := newLogger(cfg)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel), "debug is off at info level")

	cfg.verbose = true
	log, err = newLogger(cfg)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel), "verbose forces debug")
}
