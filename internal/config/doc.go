// Package config loads server settings from defaults, an optional config.yaml
// and KIOKU_-prefixed environment variables, and validates them before any
// component starts. Nested keys map to variables by replacing dots with
// underscores, so study.timezone is read from KIOKU_STUDY_TIMEZONE.
package config
