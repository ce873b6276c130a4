package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays Config fields from the process environment using the
// struct's env tags. Unset variables leave the current values untouched.
// Malformed values (e.g. an unparsable ACCESS_TOKEN_VALIDITY) panic, as the
// process cannot start with a half-applied configuration.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
