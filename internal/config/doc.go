// Package config loads, normalizes, and validates vidup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDUP_BASE_URL. The Config type centralizes every knob the CLI and the
// session controller need: service endpoints, upload limits, poll cadence,
// notice timing, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized endpoints, canonical log formats, and clear validation errors.
package config
