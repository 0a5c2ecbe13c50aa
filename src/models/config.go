package models

// MConfig Structure
type MConfig struct {
	Name        string             `yaml:"name"`
	Host        string             `yaml:"host"`
	Port        int                `yaml:"port"`
	LogLevel    string             `yaml:"log_level"`
	GrpcHost    string             `yaml:"grpc_host"`
	GrpcPort    int                `yaml:"grpc_port"`
	Storage     MStorageConfig     `yaml:"storage"`
	Redis       MRedisConfig       `yaml:"redis"`
	Network     MNetworkConfig     `yaml:"network"`
	Refresh     MRefreshConfig     `yaml:"refresh"`
	Providers   MProvidersConfig   `yaml:"providers"`
	DevProxy    MDevProxyConfig    `yaml:"dev_proxy"`
	WatchList   []string           `yaml:"watch_list"`
	SymbolMap   map[string]string  `yaml:"symbol_map"`
	Diagnostics MDiagnosticsConfig `yaml:"diagnostics"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MRedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	KeyPrefix  string `yaml:"key_prefix"`
	Channel    string `yaml:"channel"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	UserAgent      string   `yaml:"user_agent"`
}

type MRefreshConfig struct {
	IntervalSeconds     int  `yaml:"interval_seconds"`
	ChartFanOutCap      int  `yaml:"chart_fanout_cap"`
	ChartTimeoutSeconds int  `yaml:"chart_timeout_seconds"`
	ChartConcurrency    int  `yaml:"chart_concurrency"`
	SparklinePoints     int  `yaml:"sparkline_points"`
	UseAlternate        bool `yaml:"use_alternate"`
}

type MProvidersConfig struct {
	Primary   string          `yaml:"primary"`
	Alternate string          `yaml:"alternate"`
	Sources   []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // finnhub | alphavantage | yahoo | tradingview
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type MDevProxyConfig struct {
	Enabled bool                `yaml:"enabled"`
	Routes  []MProxyRouteConfig `yaml:"routes"`
}

type MProxyRouteConfig struct {
	Prefix string `yaml:"prefix"`
	Target string `yaml:"target"`
}

type MDiagnosticsConfig struct {
	SelfTestSchedule string `yaml:"selftest_schedule"`
	CleanupSchedule  string `yaml:"cleanup_schedule"`
}
