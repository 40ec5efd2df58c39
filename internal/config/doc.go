// Package config loads, normalizes, and validates the marquee configuration.
//
// Configuration lives in a TOML file (default ~/.config/marquee/config.toml)
// with sections per subsystem: paths, the external catalog API, the
// generative text service, resolver timing, scoring thresholds, and logging.
// Scoring thresholds are empirical tuning constants and deliberately live
// here rather than being derived in code.
package config
