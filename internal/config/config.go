// ABOUTME: Configuration loading and parsing for mailbot
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file leaves them unset.
const (
	DefaultMaxPromptRetries = 5
	DefaultPasswordLength   = 12
	DefaultSessionTTL       = 30 * time.Minute
	DefaultRequestTimeout   = 15 * time.Second
)

// Config represents the complete mailbot configuration
type Config struct {
	Matrix   MatrixConfig   `yaml:"matrix"`
	Mailbox  MailboxConfig  `yaml:"mailbox"`
	Database DatabaseConfig `yaml:"database"`
	Bot      BotConfig      `yaml:"bot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MatrixConfig holds the Matrix homeserver connection settings
type MatrixConfig struct {
	Homeserver   string   `yaml:"homeserver"`
	UserID       string   `yaml:"user_id"`
	AccessToken  string   `yaml:"access_token"`
	AllowedUsers []string `yaml:"allowed_users"`
}

// MailboxConfig holds the Mail-in-a-Box admin API settings
type MailboxConfig struct {
	// Domain is the host serving the admin API and webmail (e.g. box.example.com)
	Domain string `yaml:"domain"`
	// EmailDomain is the domain new addresses are created under (e.g. example.com)
	EmailDomain string `yaml:"email_domain"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	// AdminContact is shown to users when something goes wrong (e.g. @ops:example.org)
	AdminContact string `yaml:"admin_contact"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BotConfig holds dialogue tuning parameters
type BotConfig struct {
	MaxPromptRetries int `yaml:"max_prompt_retries"`
	PasswordLength   int `yaml:"password_length"`

	SessionTTL     time.Duration `yaml:"-"`
	RequestTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SessionTTLRaw     string `yaml:"session_ttl"`
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values and defaults are applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Matrix.Homeserver == "" {
		return fmt.Errorf("matrix.homeserver is required")
	}
	if c.Matrix.UserID == "" {
		return fmt.Errorf("matrix.user_id is required")
	}
	if c.Matrix.AccessToken == "" {
		return fmt.Errorf("matrix.access_token is required")
	}

	if c.Mailbox.Domain == "" {
		return fmt.Errorf("mailbox.domain is required")
	}
	if c.Mailbox.EmailDomain == "" {
		return fmt.Errorf("mailbox.email_domain is required")
	}
	if c.Mailbox.Username == "" {
		return fmt.Errorf("mailbox.username is required")
	}
	if c.Mailbox.Password == "" {
		return fmt.Errorf("mailbox.password is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Bot.PasswordLength < 8 {
		return fmt.Errorf("bot.password_length must be at least 8, got %d", c.Bot.PasswordLength)
	}

	return nil
}

// applyDefaults fills in unset optional fields
func (c *Config) applyDefaults() {
	if c.Bot.MaxPromptRetries == 0 {
		c.Bot.MaxPromptRetries = DefaultMaxPromptRetries
	}
	if c.Bot.PasswordLength == 0 {
		c.Bot.PasswordLength = DefaultPasswordLength
	}
	if c.Bot.SessionTTL == 0 {
		c.Bot.SessionTTL = DefaultSessionTTL
	}
	if c.Bot.RequestTimeout == 0 {
		c.Bot.RequestTimeout = DefaultRequestTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Bot.SessionTTLRaw != "" {
		cfg.Bot.SessionTTL, err = time.ParseDuration(cfg.Bot.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Bot.SessionTTLRaw, err)
		}
	}

	if cfg.Bot.RequestTimeoutRaw != "" {
		cfg.Bot.RequestTimeout, err = time.ParseDuration(cfg.Bot.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Bot.RequestTimeoutRaw, err)
		}
	}

	return nil
}
