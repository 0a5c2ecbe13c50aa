package config

import (
	"os"
	"path/filepath"
	"testing"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func defaults() *Config {
	c := &Config{MConfig: &models.MConfig{}}
	c.ApplyDefaults()
	return c
}

// -----------------------------------------------------------------------------

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	c := defaults()

	require.Equal(t, 8080, c.Port)
	require.Equal(t, 9090, c.GrpcPort)
	require.Equal(t, "sqlite", c.Storage.DBType)
	require.Equal(t, 30, c.Refresh.IntervalSeconds)
	require.Equal(t, 8, c.Refresh.ChartFanOutCap)
	require.Equal(t, 20, c.Refresh.ChartTimeoutSeconds)
	require.Equal(t, "finnhub", c.Providers.Primary)
	require.Equal(t, "tradingview", c.Providers.Alternate)
	require.Equal(t, "@every 5m", c.Diagnostics.SelfTestSchedule)
	require.NoError(t, c.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	// Arrange
	c := defaults()
	c.Providers.Sources = append(c.Providers.Sources, models.MSourceConfig{Name: "av", Type: "alphavantage"})

	// Act
	c.ApplyEnv(env(map[string]string{
		"FINNHUB_API_KEY":         "fh-key",
		"ALPHAVANTAGE_API_KEY":    "av-key",
		"DASHBOARD_PORT":          "9000",
		"DASHBOARD_DB_CONNECTION": "postgres://dash@localhost/dash",
		"DASHBOARD_REDIS_ADDR":    "redis:6379",
	}))

	// Assert
	fh, _ := c.Source("finnhub")
	av, _ := c.Source("av")
	require.Equal(t, "fh-key", fh.APIKey)
	require.Equal(t, "av-key", av.APIKey)
	require.Equal(t, 9000, c.Port)
	require.Equal(t, "postgres://dash@localhost/dash", c.Storage.DBConnectionString)
	require.True(t, c.Redis.Enabled)
	require.Equal(t, "redis:6379", c.Redis.Addr)
}

func TestApplyEnv_IgnoresBadPort(t *testing.T) {
	t.Parallel()

	c := defaults()
	c.ApplyEnv(env(map[string]string{"DASHBOARD_PORT": "http"}))

	require.Equal(t, 8080, c.Port)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(c *Config){
		"bad port":          func(c *Config) { c.Port = 70000 },
		"unknown db":        func(c *Config) { c.Storage.DBType = "mongo" },
		"postgres no dsn":   func(c *Config) { c.Storage.DBType = "postgres" },
		"redis no addr":     func(c *Config) { c.Redis.Enabled = true },
		"unknown primary":   func(c *Config) { c.Providers.Primary = "nope" },
		"same alternate":    func(c *Config) { c.Providers.Alternate = c.Providers.Primary },
		"duplicate source":  func(c *Config) { c.Providers.Sources = append(c.Providers.Sources, c.Providers.Sources[0]) },
		"relative proxy":    func(c *Config) { c.DevProxy.Routes = []models.MProxyRouteConfig{{Prefix: "/yapi", Target: "query1"}} },
		"prefix no slash":   func(c *Config) { c.DevProxy.Routes = []models.MProxyRouteConfig{{Prefix: "yapi", Target: "https://x"}} },
		"bad cron schedule": func(c *Config) { c.Diagnostics.CleanupSchedule = "every hour" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := defaults()
			mutate(c)

			var cfgErr *helpers.ConfigurationError
			require.ErrorAs(t, c.Validate(), &cfgErr)
		})
	}
}

func TestNewConfig_FileAndSave(t *testing.T) {
	t.Parallel()

	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
name: desk
port: 8181
providers:
  primary: yahoo
  sources:
    - type: yahoo
    - name: tv
      type: tradingview
watch_list: ["NASDAQ:AAPL", "TVC:GOLD"]
dev_proxy:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	// Act
	c, err := NewConfig(path)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "desk", c.Name)
	require.Equal(t, "yahoo", c.Providers.Sources[0].Name)
	require.Empty(t, c.Providers.Alternate)
	require.Equal(t, []string{"NASDAQ:AAPL", "TVC:GOLD"}, c.WatchList)
	require.Len(t, c.DevProxy.Routes, 2)

	out := filepath.Join(dir, "saved.yaml")
	require.NoError(t, c.Save(out))
	again, err := NewConfig(out)
	require.NoError(t, err)
	require.Equal(t, c.WatchList, again.WatchList)
	require.Equal(t, c.DevProxy.Routes, again.DevProxy.Routes)
}

func TestNewConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	var cfgErr *helpers.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
