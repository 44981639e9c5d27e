package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
[target]
url = "http://192.168.1.200"
username = "admin"
password = "admin"

[smtp]
gateway = "smtp.example.com"
port = 587
reply_address = "scanner@example.com"
use_ssl = "tls"
auth_method = "login-plain"

[credentials]
userid = "scanner@example.com"
password = "app-password"

[settings]
headless = false
screenshot_on_success = true
screenshot_on_failure = true
wait_timeout = 15
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	config, err := LoadFromFile(writeConfig(t, validConfig))

	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.200", config.Target.URL)
	assert.Equal(t, "smtp.example.com", config.SMTP.Gateway)
	assert.Equal(t, 587, config.SMTP.Port)
	assert.Equal(t, "tls", config.SMTP.UseSSL)
	assert.Equal(t, "login-plain", config.SMTP.AuthMethod)
	assert.Equal(t, "scanner@example.com", config.Credentials.UserID)
	assert.False(t, config.Settings.Headless)
	assert.Equal(t, 15, config.Settings.WaitTimeout)
	assert.Equal(t, 15*time.Second, config.Settings.WaitDuration())
	// Defaults fill in what the file omits
	assert.Equal(t, "screenshots", config.Settings.ScreenshotDir)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadFromFileMalformed(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "[target\nnot toml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadFromFileMissingPort(t *testing.T) {
	content := `
[target]
url = "http://192.168.1.200"
username = "admin"
password = "admin"

[smtp]
gateway = "smtp.example.com"
reply_address = "scanner@example.com"
use_ssl = "tls"
auth_method = "login-plain"

[credentials]
userid = "scanner@example.com"
password = "app-password"
`
	_, err := LoadFromFile(writeConfig(t, content))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "Port")
}

func TestLoadFromFileInvalidEnums(t *testing.T) {
	tests := []struct {
		name    string
		replace func(string) string
	}{
		{"bad ssl mode", func(s string) string {
			return replaceLine(s, `use_ssl = "tls"`, `use_ssl = "starttls"`)
		}},
		{"bad auth method", func(s string) string {
			return replaceLine(s, `auth_method = "login-plain"`, `auth_method = "oauth"`)
		}},
		{"port out of range", func(s string) string {
			return replaceLine(s, "port = 587", "port = 70000")
		}},
		{"zero wait timeout", func(s string) string {
			return replaceLine(s, "wait_timeout = 15", "wait_timeout = 0")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.replace(validConfig)))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRINTERCFG_TARGET_URL", "http://10.0.0.5")
	t.Setenv("PRINTERCFG_TARGET_USERNAME", "svc-account")
	t.Setenv("PRINTERCFG_HEADLESS", "true")
	t.Setenv("PRINTERCFG_LOG_LEVEL", "debug")

	config, err := LoadFromFile(writeConfig(t, validConfig))

	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5", config.Target.URL)
	assert.Equal(t, "svc-account", config.Target.Username)
	assert.True(t, config.Settings.Headless)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestDefaults(t *testing.T) {
	config := NewDefaultConfig()

	assert.True(t, config.Settings.Headless)
	assert.True(t, config.Settings.ScreenshotOnSuccess)
	assert.True(t, config.Settings.ScreenshotOnFailure)
	assert.Equal(t, 10, config.Settings.WaitTimeout)
	assert.Equal(t, "screenshots", config.Settings.ScreenshotDir)
}

func replaceLine(s, old, repl string) string {
	return strings.Replace(s, old, repl, 1)
}
