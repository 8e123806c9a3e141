package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "internet.iitb.ac.in", cfg.PortalHost)
	assert.Empty(t, cfg.FallbackIP)
	assert.Zero(t, cfg.RequestInterval)
	assert.Equal(t, "internet.iitb.ac.in", cfg.Host().Name)
}

func TestLoadFileOverlay(t *testing.T) {
	path := writeConfig(t, `
fallback_ip: 10.201.250.201
request_interval: 500ms
metrics_file: /tmp/iitb.prom
history_uri: redis://localhost:6379/0
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "internet.iitb.ac.in", cfg.PortalHost)
	assert.Equal(t, "10.201.250.201", cfg.Host().FallbackIP)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, "/tmp/iitb.prom", cfg.MetricsFile)
	assert.Equal(t, "redis://localhost:6379/0", cfg.HistoryURI)
	assert.EqualValues(t, 100, cfg.HistoryMax)
}

func TestLoadFileRejectsBadFallback(t *testing.T) {
	for _, ip := range []string{"not-an-ip", "::1", "::ffff:10.1.2.3", "10.1.2"} {
		path := writeConfig(t, "fallback_ip: \""+ip+"\"\n")
		_, err := LoadFile(path)
		assert.Error(t, err, ip)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
