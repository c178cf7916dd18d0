// Package config loads, normalizes, and validates rippa configuration.
// Values come from a TOML file; the CLI applies flag overrides on top, so
// flags always win and file values fill in whatever was left unset.
package config
