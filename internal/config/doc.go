// Package config loads and validates application configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// (config.yaml, configs/config.yaml, or $POKER_CONFIG_FILE), then POKER_*
// environment variables. Each layer only overrides the settings it
// actually specifies, so a one-line config file or a single env var is
// enough to change one knob.
//
// Example environment:
//
//	POKER_SERVER_PORT=9090
//	POKER_SOURCE_SPREADSHEET_ID=1abc...
//	POKER_SOURCE_CREDENTIALS_FILE=service-account.json
//	POKER_LOGGING_LEVEL=debug
//
// Validation happens once at load: field constraints are declared as
// struct tags and checked with go-playground/validator, cross-field rules
// in validate().
package config
