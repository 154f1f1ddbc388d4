package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	Cache   CacheConfig
	Refresh RefreshConfig
	List    ListConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourcesConfig holds retailer connection settings
type SourcesConfig struct {
	PrezunicBaseURL string        `mapstructure:"prezunic_base_url"`
	ZonaSulBaseURL  string        `mapstructure:"zonasul_base_url"`
	ExtraBaseURL    string        `mapstructure:"extra_base_url"`
	InstaleapAPIURL string        `mapstructure:"instaleap_api_url"`
	InstaleapClient string        `mapstructure:"instaleap_client_id"`
	InstaleapStore  string        `mapstructure:"instaleap_store_reference"`
	SMDeliveryURL   string        `mapstructure:"smdelivery_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	PageSize        int           `mapstructure:"page_size"`
	MaxPages        int           `mapstructure:"max_pages"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	// Path of the sqlite snapshot database; empty disables persistence.
	Path string `mapstructure:"path"`
}

// RefreshConfig holds scheduled refresh configuration
type RefreshConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// ListConfig holds list calculation defaults
type ListConfig struct {
	DefaultCEP string `mapstructure:"default_cep"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/precolista/")

	v.SetEnvPrefix("PRECOLISTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("sources.prezunic_base_url", "https://www.prezunic.com.br")
	v.SetDefault("sources.zonasul_base_url", "https://www.zonasul.com.br")
	v.SetDefault("sources.extra_base_url", "https://www.extramercado.com.br")
	v.SetDefault("sources.instaleap_api_url", "https://nextgentheadless.instaleap.io/api/v3")
	v.SetDefault("sources.instaleap_client_id", "TORRE_SUPERMERCADO")
	v.SetDefault("sources.instaleap_store_reference", "2")
	v.SetDefault("sources.smdelivery_base_url", "https://www.supermarketdelivery.com.br")
	v.SetDefault("sources.timeout", "15s")
	v.SetDefault("sources.page_size", 24)
	v.SetDefault("sources.max_pages", 3)

	v.SetDefault("cache.path", "data/snapshots.db")

	// 03:00 on day 5 of every month, Rio time.
	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.cron", "0 3 5 * *")
	v.SetDefault("refresh.timezone", "America/Sao_Paulo")

	v.SetDefault("list.default_cep", "22041-001")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	for name, value := range map[string]string{
		"sources.prezunic_base_url": config.Sources.PrezunicBaseURL,
		"sources.zonasul_base_url":  config.Sources.ZonaSulBaseURL,
		"sources.extra_base_url":    config.Sources.ExtraBaseURL,
		"sources.instaleap_api_url": config.Sources.InstaleapAPIURL,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if config.Sources.PageSize < 1 || config.Sources.PageSize > 50 {
		return fmt.Errorf("sources page size must be between 1 and 50, got: %d", config.Sources.PageSize)
	}
	if config.Sources.MaxPages < 1 || config.Sources.MaxPages > 6 {
		return fmt.Errorf("sources max pages must be between 1 and 6, got: %d", config.Sources.MaxPages)
	}

	if config.Refresh.Enabled && config.Refresh.Cron == "" {
		return fmt.Errorf("refresh cron expression is required when refresh is enabled")
	}

	if config.List.DefaultCEP == "" {
		return fmt.Errorf("default CEP is required")
	}

	return nil
}
