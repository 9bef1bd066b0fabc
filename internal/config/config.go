package config

import "fmt"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultPort is the gateway port used when none is configured.
const DefaultPort = 18790

// DefaultParamTable is the host CMS table holding configuration parameters.
const DefaultParamTable = "ir_config_parameter"

// ConfigError is returned when the config file cannot be understood.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with every default applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: DefaultPort,
			Bind: "loopback",
			Auth: GatewayAuth{Mode: "token"},
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Table:  DefaultParamTable,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
