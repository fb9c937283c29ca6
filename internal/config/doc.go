// Package config handles configuration loading for mailbot.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from MAILBOT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/mailbot/config.yaml
//  3. ~/.config/mailbot/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	mailbox:
//	  password: "${MAILBOT_ADMIN_PASSWORD}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Matrix connection:
//
//	matrix:
//	  homeserver: "https://matrix.example.org"
//	  user_id: "@mailbot:example.org"
//	  access_token: "${MAILBOT_MATRIX_TOKEN}"
//	  allowed_users: []   # empty = respond to everyone
//
// Mail-in-a-Box admin API:
//
//	mailbox:
//	  domain: "box.example.com"     # admin API and webmail host
//	  email_domain: "example.com"   # domain for new addresses
//	  username: "${MAILBOT_ADMIN_USER}"
//	  password: "${MAILBOT_ADMIN_PASSWORD}"
//	  admin_contact: "@ops:example.org"
//
// Database:
//
//	database:
//	  path: "/var/lib/mailbot/mailbot.db"
//
// Dialogue tuning:
//
//	bot:
//	  max_prompt_retries: 5   # re-asks before a dialogue aborts
//	  password_length: 12
//	  session_ttl: "30m"      # abandoned dialogue expiry
//	  request_timeout: "15s"  # admin API call timeout
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
package config
