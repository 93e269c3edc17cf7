package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFiles(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(noEnvFiles(t))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, "梁红茹", cfg.DefaultTeacherReviewer)
	assert.Equal(t, 10, cfg.PageSize)
	assert.False(t, cfg.LogCalls)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LABDESK_API_URL", "https://lab.example.edu/api/")
	t.Setenv("LABDESK_TIMEOUT", "3s")
	t.Setenv("LABDESK_POLL_INTERVAL", "1m")
	t.Setenv("LABDESK_LOG_CALLS", "true")
	t.Setenv("LABDESK_PAGE_SIZE", "25")

	cfg, err := Load(noEnvFiles(t))
	require.NoError(t, err)

	assert.Equal(t, "https://lab.example.edu/api", cfg.APIURL, "trailing slash trimmed")
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.True(t, cfg.LogCalls)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LABDESK_PROFILE=lab2\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("LABDESK_PROFILE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lab2", cfg.Profile)
}

func TestLoad_InvalidURL(t *testing.T) {
	t.Setenv("LABDESK_API_URL", "localhost:8000")

	_, err := Load(noEnvFiles(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://")
}

func TestLoad_PollInterval(t *testing.T) {
	t.Setenv("LABDESK_POLL_INTERVAL", "0s")
	cfg, err := Load(noEnvFiles(t))
	require.NoError(t, err)
	assert.Zero(t, cfg.PollInterval)

	t.Setenv("LABDESK_POLL_INTERVAL", "-5s")
	_, err = Load(noEnvFiles(t))
	assert.ErrorContains(t, err, "poll_interval")
}

func TestCookieKeys_GeneratesAndReuses(t *testing.T) {
	cfg, err := Load(noEnvFiles(t))
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "keys", "cookie.key")

	hash1, block1, err := cfg.CookieKeys(keyFile)
	require.NoError(t, err)
	assert.Len(t, hash1, 64)
	assert.Len(t, block1, 32)

	hash2, block2, err := cfg.CookieKeys(keyFile)
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)
	assert.Equal(t, block1, block2)
}

func TestCookieKeys_FromEnv(t *testing.T) {
	cfg := Config{CookieHashKey: "00112233", CookieBlockKey: ""}
	hash, block, err := cfg.CookieKeys(filepath.Join(t.TempDir(), "unused"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x11, 0x22, 0x33}, hash)
	assert.Nil(t, block)

	cfg.CookieHashKey = "zz"
	_, _, err = cfg.CookieKeys("")
	require.Error(t, err)
}
