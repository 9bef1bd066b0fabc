package config

// Config is the root configuration for the assistloop service. It covers the
// service itself; widget settings live in the parameter store, not here.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Plugins PluginsConfig `yaml:"plugins,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	TLS            GatewayTLS  `yaml:"tls,omitempty"`
	// AllowedOrigins lists browser origins allowed to call the admin API and
	// open the admin socket. "*" allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	// PublicURL is the base URL pages reach the gateway at, e.g.
	// "https://widgets.example.com". The embed snippet loads the loader from
	// it. Empty means the host and scheme of the snippet request.
	PublicURL string `yaml:"publicURL,omitempty"`
	// Metrics exposes /metrics when true.
	Metrics bool `yaml:"metrics,omitempty"`
}

// GatewayAuth protects the admin surface.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the gateway listener.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// StoreConfig selects the configuration parameter backend.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "postgres" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite file; empty means <data>/assistloop.db
	DSN    string `yaml:"dsn,omitempty"`    // postgres connection string, may reference ${ENV}
	Table  string `yaml:"table,omitempty"`  // postgres table, defaults to ir_config_parameter
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// PluginsConfig enables the built-in settings plugins.
type PluginsConfig struct {
	// Validate rejects saves with an unknown position, a non-http(s) widget
	// URL, or an enabled widget without an agent id.
	Validate bool `yaml:"validate,omitempty"`
	// Audit logs every saved record.
	Audit bool `yaml:"audit,omitempty"`
}
