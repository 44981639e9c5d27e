package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// ErrConfiguration indicates the configuration file is missing, malformed,
// or fails validation. No browser is launched when this is returned.
var ErrConfiguration = errors.New("configuration error")

// Config represents the application configuration
type Config struct {
	Target      TargetConfig      `toml:"target"`
	SMTP        SMTPConfig        `toml:"smtp"`
	Credentials CredentialsConfig `toml:"credentials"`
	Settings    SettingsConfig    `toml:"settings"`
	Logging     LoggingConfig     `toml:"logging"`
}

// TargetConfig identifies the printer web interface and its login credentials
type TargetConfig struct {
	URL      string `toml:"url" validate:"required,url"`
	Username string `toml:"username" validate:"required"`
	Password string `toml:"password" validate:"required"`
}

// SMTPConfig holds the values written into the printer's SMTP settings form
type SMTPConfig struct {
	Gateway      string `toml:"gateway" validate:"required"`
	Port         int    `toml:"port" validate:"required,gte=1,lte=65535"`
	ReplyAddress string `toml:"reply_address" validate:"required,email"`
	UseSSL       string `toml:"use_ssl" validate:"required,oneof=none negotiate ssl tls"`
	AuthMethod   string `toml:"auth_method" validate:"required,oneof=none login-plain cram-md5"`
}

// CredentialsConfig holds the device-side SMTP auth credentials.
// These are distinct from the web-login credentials in [target].
type CredentialsConfig struct {
	UserID   string `toml:"userid" validate:"required"`
	Password string `toml:"password" validate:"required"`
}

// SettingsConfig controls run behavior
type SettingsConfig struct {
	Headless            bool   `toml:"headless"`
	ScreenshotOnSuccess bool   `toml:"screenshot_on_success"`
	ScreenshotOnFailure bool   `toml:"screenshot_on_failure"`
	WaitTimeout         int    `toml:"wait_timeout" validate:"required,gt=0"` // seconds
	ScreenshotDir       string `toml:"screenshot_dir" validate:"required"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// WaitDuration returns the element wait timeout as a duration
func (s SettingsConfig) WaitDuration() time.Duration {
	return time.Duration(s.WaitTimeout) * time.Second
}

// NewDefaultConfig creates a configuration with default values.
// Target, SMTP, and credential fields have no sensible defaults and must
// come from the config file.
func NewDefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			Headless:            true,
			ScreenshotOnSuccess: true,
			ScreenshotOnFailure: true,
			WaitTimeout:         10,
			ScreenshotDir:       "screenshots",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env.
// The config is constructed once at startup and immutable thereafter.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %s: %v", ErrConfiguration, path, err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if url := os.Getenv("PRINTERCFG_TARGET_URL"); url != "" {
		config.Target.URL = url
	}
	if username := os.Getenv("PRINTERCFG_TARGET_USERNAME"); username != "" {
		config.Target.Username = username
	}
	if password := os.Getenv("PRINTERCFG_TARGET_PASSWORD"); password != "" {
		config.Target.Password = password
	}
	if headless := os.Getenv("PRINTERCFG_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Settings.Headless = h
		}
	}
	if level := os.Getenv("PRINTERCFG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Validate checks that all required fields are present and within range
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: field %s failed %s validation", ErrConfiguration, first.Namespace(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}
