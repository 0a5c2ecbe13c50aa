package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads the YAML file at configPath (skipped when empty), fills
// defaults, then applies environment overrides. A .env file in the working
// directory is honoured when present.
func NewConfig(configPath string) (*Config, error) {
	var modelConfig models.MConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
		}
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
		}
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	_ = godotenv.Load()
	config.ApplyEnv(os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero value the service cannot run without.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "market-dashboard"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = 9090
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "market_dashboard.db"
	}
	c.Storage.RetentionDays = utils.IntOr(c.Storage.RetentionDays, utils.DefaultRetentionDays)

	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 3600
	}

	c.Network.RequestTimeout = utils.IntOr(c.Network.RequestTimeout, int(utils.DefaultRequestTimeout.Seconds()))
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = "Mozilla/5.0 (compatible; market-dashboard/1.0)"
	}

	c.Refresh.IntervalSeconds = utils.IntOr(c.Refresh.IntervalSeconds, int(utils.DefaultRefreshInterval.Seconds()))
	c.Refresh.ChartFanOutCap = utils.IntOr(c.Refresh.ChartFanOutCap, utils.DefaultChartFanOutCap)
	c.Refresh.ChartTimeoutSeconds = utils.IntOr(c.Refresh.ChartTimeoutSeconds, int(utils.DefaultChartTimeout.Seconds()))
	c.Refresh.ChartConcurrency = utils.IntOr(c.Refresh.ChartConcurrency, utils.DefaultChartConcurrency)
	c.Refresh.SparklinePoints = utils.IntOr(c.Refresh.SparklinePoints, models.DefaultChartPoints)

	if len(c.Providers.Sources) == 0 {
		c.Providers.Sources = []models.MSourceConfig{
			{Name: "finnhub", Type: "finnhub"},
			{Name: "tradingview", Type: "tradingview"},
		}
		if c.Providers.Alternate == "" {
			c.Providers.Alternate = "tradingview"
		}
	}
	for i := range c.Providers.Sources {
		if c.Providers.Sources[i].Name == "" {
			c.Providers.Sources[i].Name = c.Providers.Sources[i].Type
		}
	}
	if c.Providers.Primary == "" {
		c.Providers.Primary = c.Providers.Sources[0].Name
	}

	if c.DevProxy.Enabled && len(c.DevProxy.Routes) == 0 {
		c.DevProxy.Routes = []models.MProxyRouteConfig{
			{Prefix: "/yapi", Target: "https://query1.finance.yahoo.com"},
			{Prefix: "/tvapi", Target: "https://scanner.tradingview.com"},
		}
	}

	if c.Diagnostics.SelfTestSchedule == "" {
		c.Diagnostics.SelfTestSchedule = "@every 5m"
	}
	if c.Diagnostics.CleanupSchedule == "" {
		c.Diagnostics.CleanupSchedule = "@hourly"
	}
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides secrets and deployment knobs from the environment.
// API keys are written to every source of the matching type.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("FINNHUB_API_KEY"); ok && v != "" {
		c.setSourceKey("finnhub", v)
	}
	if v, ok := lookup("ALPHAVANTAGE_API_KEY"); ok && v != "" {
		c.setSourceKey("alphavantage", v)
		c.setSourceKey("alpha_vantage", v)
	}
	if v, ok := lookup("DASHBOARD_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v, ok := lookup("DASHBOARD_DB_CONNECTION"); ok && v != "" {
		c.Storage.DBConnectionString = v
	}
	if v, ok := lookup("DASHBOARD_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
}

func (c *Config) setSourceKey(sourceType, key string) {
	for i := range c.Providers.Sources {
		if strings.EqualFold(c.Providers.Sources[i].Type, sourceType) {
			c.Providers.Sources[i].APIKey = key
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty", nil)
	}
	if c.Host == "" {
		return helpers.NewConfigurationError("server host cannot be empty", nil)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return helpers.NewConfigurationError(fmt.Sprintf("invalid server port number: %d", c.Port), nil)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 || (c.GrpcPort == c.Port && c.GrpcHost == c.Host) {
		return helpers.NewConfigurationError(fmt.Sprintf("invalid grpc port number: %d", c.GrpcPort), nil)
	}

	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return helpers.NewConfigurationError("database path cannot be empty for sqlite", nil)
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return helpers.NewConfigurationError("connection string cannot be empty for postgres", nil)
		}
	default:
		return helpers.NewConfigurationError(fmt.Sprintf("unknown database type %q", c.Storage.DBType), nil)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return helpers.NewConfigurationError("redis address cannot be empty when redis is enabled", nil)
	}

	if c.Network.RequestTimeout <= 0 {
		return helpers.NewConfigurationError("request timeout must be greater than 0", nil)
	}
	if c.Refresh.IntervalSeconds <= 0 {
		return helpers.NewConfigurationError("refresh interval must be greater than 0", nil)
	}

	names := make(map[string]bool, len(c.Providers.Sources))
	for i, src := range c.Providers.Sources {
		if src.Name == "" {
			return helpers.NewConfigurationError(fmt.Sprintf("source %d must have a name", i), nil)
		}
		if names[src.Name] {
			return helpers.NewConfigurationError(fmt.Sprintf("source '%s' is declared twice", src.Name), nil)
		}
		names[src.Name] = true
	}
	if !names[c.Providers.Primary] {
		return helpers.NewConfigurationError(fmt.Sprintf("primary provider '%s' is not a configured source", c.Providers.Primary), nil)
	}
	if c.Providers.Alternate != "" {
		if !names[c.Providers.Alternate] {
			return helpers.NewConfigurationError(fmt.Sprintf("alternate provider '%s' is not a configured source", c.Providers.Alternate), nil)
		}
		if c.Providers.Alternate == c.Providers.Primary {
			return helpers.NewConfigurationError("alternate provider must differ from the primary", nil)
		}
	}

	for _, route := range c.DevProxy.Routes {
		if !strings.HasPrefix(route.Prefix, "/") {
			return helpers.NewConfigurationError(fmt.Sprintf("proxy prefix '%s' must start with '/'", route.Prefix), nil)
		}
		target, err := url.Parse(route.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return helpers.NewConfigurationError(fmt.Sprintf("proxy target '%s' is not an absolute URL", route.Target), err)
		}
	}

	for _, schedule := range []string{c.Diagnostics.SelfTestSchedule, c.Diagnostics.CleanupSchedule} {
		if schedule == "" {
			continue
		}
		if _, err := cron.ParseStandard(schedule); err != nil {
			return helpers.NewConfigurationError(fmt.Sprintf("invalid schedule '%s'", schedule), err)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Source returns the source config with the given name.
func (c *Config) Source(name string) (models.MSourceConfig, bool) {
	for _, src := range c.Providers.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return models.MSourceConfig{}, false
}
