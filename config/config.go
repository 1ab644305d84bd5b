package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and cache configuration
//   - http.go: HTTP server configuration
//   - services.go: Service mode, upstream, and scheduler configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, etc.)
	IsDev bool `env:"PATROL_DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"PATROL_DB_"`
	Redis    RedisConfig `envPrefix:"PATROL_REDIS_"`
	Cache    CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Service mode configuration
	Services string `env:"PATROL_SERVICES" envDefault:"api,scheduler"`

	// Message broker configuration
	Broker BrokerConfig `envPrefix:"PATROL_BROKER_"`

	// Upstream service configuration
	Katalogus UpstreamConfig `envPrefix:"PATROL_KATALOGUS_"`
	Octopoes  UpstreamConfig `envPrefix:"PATROL_OCTOPOES_"`
	Bytes     BytesConfig    `envPrefix:"PATROL_BYTES_"`

	// Scheduler configuration
	Scheduler SchedulerConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Postgres.Sanitize()
	c.HTTP.Sanitize()
	c.Broker.Sanitize()

	c.Katalogus.Sanitize()
	c.Octopoes.Sanitize()
	c.Bytes.Sanitize()

	c.Scheduler.Sanitize()
	c.Cache.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsAPIEnabled returns true if the control API service is enabled.
func (c *AppConfig) IsAPIEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeAPI]
}

// IsSchedulerEnabled returns true if the scheduler supervisor service is enabled.
func (c *AppConfig) IsSchedulerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeScheduler]
}
