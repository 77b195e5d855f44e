package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
auth:
  jwt_secret: test-secret
database:
  postgres:
    host: localhost
    database: cricket
    user: cricket
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 90*time.Minute, cfg.Predictions.MatchLeadTime)
	assert.Equal(t, 24*time.Hour, cfg.Predictions.TournamentLeadTime)
	assert.Equal(t, 30*time.Second, cfg.Lifecycle.SweepThrottle)
	assert.Equal(t, time.Minute, cfg.Scheduler.SweepInterval)
	assert.Equal(t, "09:00", cfg.Scheduler.DigestTime)
	assert.Equal(t, "Cricket Predictor", cfg.Mattermost.Username)
	assert.Equal(t, 10*time.Second, cfg.Mattermost.Timeout)
	assert.Equal(t, "/metrics", cfg.Metrics.Prometheus.Path)
	assert.Empty(t, cfg.Bootstrap.AdminEmails)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PREDICTIONS_MATCH_LEAD_TIME", "45m")
	t.Setenv("BOOTSTRAP_ADMIN_EMAILS", "owner@example.com,ops@example.com")
	t.Setenv("SCHEDULER_ENABLED", "true")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.Predictions.MatchLeadTime)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.True(t, cfg.Bootstrap.IsBootstrapAdmin(" OPS@example.com"))
	assert.False(t, cfg.Bootstrap.IsBootstrapAdmin("alice@example.com"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{name: "negative lead", extra: "predictions:\n  match_lead_time: -1m\n"},
		{name: "mattermost without webhook", extra: "mattermost:\n  enabled: true\n"},
		{name: "negative sweep interval", extra: "scheduler:\n  sweep_interval: -5s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, minimalYAML+tt.extra))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	assert.ErrorContains(t, err, "jwt_secret")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
