// ABOUTME: Entry point for mailbot
// ABOUTME: Wires config, store, directory client, engine and Matrix bridge together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/mailbot/internal/bot"
	"github.com/2389/mailbot/internal/config"
	"github.com/2389/mailbot/internal/directory"
	"github.com/2389/mailbot/internal/store"
)

const banner = `
                 _ _ _           _
 _ __ ___   __ _(_) | |__   ___ | |_
| '_ ' _ \ / _' | | | '_ \ / _ \| __|
| | | | | | (_| | | | |_) | (_) | |_
|_| |_| |_|\__,_|_|_|_.__/ \___/ \__|
`

// getConfigPath returns the path to the mailbot config file.
// Priority: MAILBOT_CONFIG env var > XDG_CONFIG_HOME/mailbot/config.yaml > ~/.config/mailbot/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MAILBOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mailbot", "config.yaml")
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:      %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver:  %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("Mail server: %s\n", cfg.Mailbox.Domain)
	green.Print("    ▶ ")
	fmt.Printf("Addresses:   @%s\n", cfg.Mailbox.EmailDomain)
	fmt.Println()

	// Setup graceful shutdown context first - all operations should respect it
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	dir := directory.New(cfg.Mailbox.Domain, cfg.Mailbox.Username, cfg.Mailbox.Password,
		cfg.Bot.RequestTimeout, logger)

	engine := bot.NewEngine(st, dir, bot.Config{
		Domain:           cfg.Mailbox.Domain,
		EmailDomain:      cfg.Mailbox.EmailDomain,
		AdminContact:     cfg.Mailbox.AdminContact,
		MaxPromptRetries: cfg.Bot.MaxPromptRetries,
		PasswordLength:   cfg.Bot.PasswordLength,
		SessionTTL:       cfg.Bot.SessionTTL,
	}, logger)
	defer engine.Close()

	bridge, err := NewBridge(cfg, engine, logger)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	logger.Info("starting mailbot")
	return bridge.Run(ctx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runInit() error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println("    Config Setup")
	fmt.Println("    ------------")
	fmt.Println()

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		yellow.Printf("    Config already exists at %s\n", configPath)
		return nil
	}

	template := `# mailbot configuration

matrix:
  homeserver: "https://matrix.example.org"
  user_id: "@mailbot:example.org"
  access_token: "${MAILBOT_MATRIX_TOKEN}"
  # Only respond to these users (empty = respond to everyone)
  allowed_users: []

mailbox:
  # Host serving the Mail-in-a-Box admin API and webmail
  domain: "box.example.com"
  # Domain new addresses are created under
  email_domain: "example.com"
  username: "${MAILBOT_ADMIN_USER}"
  password: "${MAILBOT_ADMIN_PASSWORD}"
  # Who to point users at when something goes wrong
  admin_contact: "@ops:example.org"

database:
  path: "${HOME}/.local/share/mailbot/mailbot.db"

bot:
  max_prompt_retries: 5
  password_length: 12
  session_ttl: "30m"
  request_timeout: "15s"

logging:
  level: "info"
`

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(template), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Println()
	green.Printf("    ✓ Config written to %s\n", configPath)
	fmt.Println()
	fmt.Println("    Edit it, then run: mailbot")
	fmt.Println()

	return nil
}
