// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// MaskSecret hides a secret for display, keeping only whether it is set.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// Redacted returns a copy of cfg that is safe to log or print.
func Redacted(cfg AppConfig) AppConfig {
	cfg.API.Token = MaskSecret(cfg.API.Token)
	cfg.API.Redis.Password = MaskSecret(cfg.API.Redis.Password)
	cfg.Gateway.Token = MaskSecret(cfg.Gateway.Token)
	return cfg
}
