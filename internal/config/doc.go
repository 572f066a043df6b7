// Package config loads, normalizes, and validates cdrip configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment variable names
// used by the original udev hook (TELEGRAM_TOKEN, CHAT_ID, COPYPARTY_URL,
// COPYPARTY_PASSWORD), optionally seeded from an env file.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical device names, and clear validation errors.
package config
