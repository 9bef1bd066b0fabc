package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"negative port", func(c *Config) { c.Gateway.Port = -1 }, "gateway.port"},
		{"port too large", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"bad bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"bad auth mode", func(c *Config) { c.Gateway.Auth.Mode = "oauth" }, "gateway.auth.mode"},
		{"tls without cert", func(c *Config) { c.Gateway.TLS.Enabled = true }, "gateway.tls"},
		{"relative public url", func(c *Config) { c.Gateway.PublicURL = "/assistloop" }, "gateway.publicURL"},
		{"public url scheme", func(c *Config) { c.Gateway.PublicURL = "ftp://example.com" }, "gateway.publicURL"},
		{"bad driver", func(c *Config) { c.Store.Driver = "redis" }, "store.driver"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.dsn"},
		{"injected table", func(c *Config) { c.Store.Table = "x; DROP TABLE y" }, "store.table"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad style", func(c *Config) { c.Logging.ConsoleStyle = "compact" }, "logging.consoleStyle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1, "issues: %v", issues)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestValidate_Accumulates(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Port = 99999
	cfg.Store.Driver = "bolt"
	cfg.Logging.Level = "noisy"

	issues := Validate(&cfg)
	assert.ElementsMatch(t, []string{"gateway.port", "store.driver", "logging.level"}, issuePaths(issues))
}

func TestValidate_PostgresWithDSN(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Driver = DriverPostgres
	cfg.Store.DSN = "postgres://localhost/odoo"
	assert.Empty(t, Validate(&cfg))
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "store.dsn", Message: "required"}
	assert.Equal(t, "store.dsn: required", issue.String())
}
