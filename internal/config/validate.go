package config

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks cfg and returns every issue found, or nil.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		add("gateway.bind", "must be one of %v, got %q", validBinds, cfg.Gateway.Bind)
	}

	validAuthModes := []string{"token", "password"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		add("gateway.auth.mode", "must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode)
	}

	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		add("gateway.tls", "certPath and keyPath are required when TLS is enabled")
	}

	if raw := cfg.Gateway.PublicURL; raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("gateway.publicURL", "must be an absolute http(s) URL, got %q", raw)
		}
	}

	validDrivers := []string{DriverSQLite, DriverPostgres, DriverMemory}
	if !slices.Contains(validDrivers, cfg.Store.Driver) {
		add("store.driver", "must be one of %v, got %q", validDrivers, cfg.Store.Driver)
	}
	if cfg.Store.Driver == DriverPostgres && cfg.Store.DSN == "" {
		add("store.dsn", "required when store.driver is postgres")
	}
	if cfg.Store.Table != "" && !tableNamePattern.MatchString(cfg.Store.Table) {
		add("store.table", "must be a plain SQL identifier, got %q", cfg.Store.Table)
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}

	validStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validStyles, cfg.Logging.ConsoleStyle)
	}

	return issues
}
