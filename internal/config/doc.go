// Package config loads, normalizes, and validates reelcache configuration.
//
// Configuration lives in a TOML file (default ~/.config/reelcache/config.toml,
// or reelcache.toml in the working directory). Provider credentials are always
// carried through this package rather than process-wide constants so wiring
// code can construct clients explicitly.
package config
