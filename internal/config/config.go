package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	EDDM    EDDMConfig    `yaml:"eddm" mapstructure:"eddm"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Census  CensusConfig  `yaml:"census" mapstructure:"census"`
	ZCTA    ZCTAConfig    `yaml:"zcta" mapstructure:"zcta"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	ROI     ROIConfig     `yaml:"roi" mapstructure:"roi"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the route and demographics cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// EDDMConfig configures the USPS EDDM route API client.
type EDDMConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBackoff int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// GeocodeConfig configures the Census geocoder client.
type GeocodeConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Benchmark   string `yaml:"benchmark" mapstructure:"benchmark"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CensusConfig configures the ACS demographics client.
type CensusConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Dataset     string `yaml:"dataset" mapstructure:"dataset"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ZCTAConfig configures ZCTA boundary downloads from the Census TIGER FTP.
type ZCTAConfig struct {
	FTPHost string `yaml:"ftp_host" mapstructure:"ftp_host"`
	FTPPath string `yaml:"ftp_path" mapstructure:"ftp_path"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// PricingConfig points at an optional tier-table override file.
type PricingConfig struct {
	TablesPath string `yaml:"tables_path" mapstructure:"tables_path"`
}

// ROIConfig points at an optional industry-profile override file.
type ROIConfig struct {
	ProfilesPath string `yaml:"profiles_path" mapstructure:"profiles_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields a given run mode depends on. Mode is the
// command family about to run: "plan", "serve", or "zcta".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if c.EDDM.Concurrency < 1 || c.EDDM.Concurrency > 16 {
		problems = append(problems, "eddm.concurrency must be between 1 and 16")
	}
	if c.EDDM.RatePerSec <= 0 {
		problems = append(problems, "eddm.rate_per_sec must be > 0")
	}

	switch mode {
	case "plan":
		if c.Geocode.BaseURL == "" {
			problems = append(problems, "geocode.base_url is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "zcta":
		if c.ZCTA.FTPHost == "" {
			problems = append(problems, "zcta.ftp_host is required")
		}
		if c.ZCTA.Dir == "" {
			problems = append(problems, "zcta.dir is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EDDM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "eddm-planner.db")
	v.SetDefault("store.ttl_hours", 24)
	v.SetDefault("eddm.base_url", "https://gis.usps.com/arcgis/rest/services/EDDM/selectZIP/GPServer")
	v.SetDefault("eddm.timeout_secs", 30)
	v.SetDefault("eddm.concurrency", 4)
	v.SetDefault("eddm.rate_per_sec", 2.0)
	v.SetDefault("eddm.max_retries", 3)
	v.SetDefault("eddm.retry_backoff_ms", 500)
	v.SetDefault("geocode.base_url", "https://geocoding.geo.census.gov/geocoder")
	v.SetDefault("geocode.benchmark", "Public_AR_Current")
	v.SetDefault("geocode.timeout_secs", 15)
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.dataset", "2023/acs/acs5")
	v.SetDefault("census.timeout_secs", 15)
	v.SetDefault("zcta.ftp_host", "ftp2.census.gov:21")
	v.SetDefault("zcta.ftp_path", "geo/tiger/TIGER2024/ZCTA520")
	v.SetDefault("zcta.dir", "zcta")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
