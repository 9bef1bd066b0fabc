package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with their environment values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

// expandSecrets lets credentials be written as ${ENV_VAR} in the file.
func expandSecrets(cfg *Config) {
	cfg.Gateway.Auth.Token = expandEnvVars(cfg.Gateway.Auth.Token)
	cfg.Gateway.Auth.Password = expandEnvVars(cfg.Gateway.Auth.Password)
	cfg.Store.DSN = expandEnvVars(cfg.Store.DSN)
}

// Load reads the YAML config at path, fills defaults and applies
// ASSISTLOOP_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSecrets(&cfg)
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = d.Gateway.Port
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = d.Gateway.Bind
	}
	if cfg.Gateway.Auth.Mode == "" {
		cfg.Gateway.Auth.Mode = d.Gateway.Auth.Mode
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = d.Store.Driver
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = d.Store.Table
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = d.Logging.ConsoleStyle
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASSISTLOOP_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("ASSISTLOOP_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("ASSISTLOOP_GATEWAY_PUBLIC_URL"); v != "" {
		cfg.Gateway.PublicURL = v
	}
	if v := os.Getenv("ASSISTLOOP_GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Auth.Token = v
	}
	if v := os.Getenv("ASSISTLOOP_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("ASSISTLOOP_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("ASSISTLOOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
