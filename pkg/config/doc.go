// Package config provides configuration management for strcalc.
//
// Configuration is loaded from YAML with environment variable overrides:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("strcalc.yaml")
//
// Environment variables follow the naming convention STRCALC_SECTION_FIELD.
// For example:
//
//   - STRCALC_EVALUATOR_MAX_VALUE overrides evaluator.max_value
//   - STRCALC_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - STRCALC_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid, reporting every bad field)
//
// There is no package-level configuration. Callers pass *Config to the
// components that need it, and Watcher hands a fresh *Config to a callback
// when the file changes.
package config
