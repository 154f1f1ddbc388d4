package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PRECOLISTA_SERVER_PORT")
		os.Unsetenv("PRECOLISTA_SERVER_ENVIRONMENT")
		os.Unsetenv("PRECOLISTA_SOURCES_PREZUNIC_BASE_URL")
		os.Unsetenv("PRECOLISTA_SOURCES_ZONASUL_BASE_URL")
		os.Unsetenv("PRECOLISTA_SOURCES_EXTRA_BASE_URL")
		os.Unsetenv("PRECOLISTA_SOURCES_INSTALEAP_API_URL")
		os.Unsetenv("PRECOLISTA_SOURCES_TIMEOUT")
		os.Unsetenv("PRECOLISTA_SOURCES_PAGE_SIZE")
		os.Unsetenv("PRECOLISTA_SOURCES_MAX_PAGES")
		os.Unsetenv("PRECOLISTA_CACHE_PATH")
		os.Unsetenv("PRECOLISTA_REFRESH_ENABLED")
		os.Unsetenv("PRECOLISTA_REFRESH_CRON")
		os.Unsetenv("PRECOLISTA_REFRESH_TIMEZONE")
		os.Unsetenv("PRECOLISTA_LIST_DEFAULT_CEP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Sources.PrezunicBaseURL != "https://www.prezunic.com.br" {
			t.Errorf("Sources.PrezunicBaseURL = %s, want https://www.prezunic.com.br", cfg.Sources.PrezunicBaseURL)
		}
		if cfg.Sources.ZonaSulBaseURL != "https://www.zonasul.com.br" {
			t.Errorf("Sources.ZonaSulBaseURL = %s, want https://www.zonasul.com.br", cfg.Sources.ZonaSulBaseURL)
		}
		if cfg.Sources.InstaleapClient != "TORRE_SUPERMERCADO" {
			t.Errorf("Sources.InstaleapClient = %s, want TORRE_SUPERMERCADO", cfg.Sources.InstaleapClient)
		}
		if cfg.Sources.InstaleapStore != "2" {
			t.Errorf("Sources.InstaleapStore = %s, want 2", cfg.Sources.InstaleapStore)
		}
		if cfg.Sources.Timeout != 15*time.Second {
			t.Errorf("Sources.Timeout = %v, want 15s", cfg.Sources.Timeout)
		}
		if cfg.Sources.PageSize != 24 {
			t.Errorf("Sources.PageSize = %d, want 24", cfg.Sources.PageSize)
		}
		if cfg.Sources.MaxPages != 3 {
			t.Errorf("Sources.MaxPages = %d, want 3", cfg.Sources.MaxPages)
		}
		if cfg.Cache.Path != "data/snapshots.db" {
			t.Errorf("Cache.Path = %s, want data/snapshots.db", cfg.Cache.Path)
		}
		if !cfg.Refresh.Enabled {
			t.Error("Refresh.Enabled = false, want true")
		}
		if cfg.Refresh.Cron != "0 3 5 * *" {
			t.Errorf("Refresh.Cron = %s, want 0 3 5 * *", cfg.Refresh.Cron)
		}
		if cfg.Refresh.Timezone != "America/Sao_Paulo" {
			t.Errorf("Refresh.Timezone = %s, want America/Sao_Paulo", cfg.Refresh.Timezone)
		}
		if cfg.List.DefaultCEP != "22041-001" {
			t.Errorf("List.DefaultCEP = %s, want 22041-001", cfg.List.DefaultCEP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRECOLISTA_SERVER_PORT", "9090")
		os.Setenv("PRECOLISTA_SERVER_ENVIRONMENT", "production")
		os.Setenv("PRECOLISTA_SOURCES_PREZUNIC_BASE_URL", "https://staging.prezunic.com.br")
		os.Setenv("PRECOLISTA_SOURCES_TIMEOUT", "30s")
		os.Setenv("PRECOLISTA_SOURCES_PAGE_SIZE", "12")
		os.Setenv("PRECOLISTA_SOURCES_MAX_PAGES", "2")
		os.Setenv("PRECOLISTA_CACHE_PATH", "/tmp/test-snapshots.db")
		os.Setenv("PRECOLISTA_REFRESH_ENABLED", "false")
		os.Setenv("PRECOLISTA_LIST_DEFAULT_CEP", "01310-100")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Sources.PrezunicBaseURL != "https://staging.prezunic.com.br" {
			t.Errorf("Sources.PrezunicBaseURL = %s, want https://staging.prezunic.com.br", cfg.Sources.PrezunicBaseURL)
		}
		if cfg.Sources.Timeout != 30*time.Second {
			t.Errorf("Sources.Timeout = %v, want 30s", cfg.Sources.Timeout)
		}
		if cfg.Sources.PageSize != 12 {
			t.Errorf("Sources.PageSize = %d, want 12", cfg.Sources.PageSize)
		}
		if cfg.Sources.MaxPages != 2 {
			t.Errorf("Sources.MaxPages = %d, want 2", cfg.Sources.MaxPages)
		}
		if cfg.Cache.Path != "/tmp/test-snapshots.db" {
			t.Errorf("Cache.Path = %s, want /tmp/test-snapshots.db", cfg.Cache.Path)
		}
		if cfg.Refresh.Enabled {
			t.Error("Refresh.Enabled = true, want false")
		}
		if cfg.List.DefaultCEP != "01310-100" {
			t.Errorf("List.DefaultCEP = %s, want 01310-100", cfg.List.DefaultCEP)
		}
	})

	t.Run("fails validation for out of range page size", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRECOLISTA_SOURCES_PAGE_SIZE", "500")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for page size out of range")
		}
	})

	t.Run("fails validation for out of range max pages", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PRECOLISTA_SOURCES_MAX_PAGES", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for max pages out of range")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8080"},
			Sources: SourcesConfig{
				PrezunicBaseURL: "https://www.prezunic.com.br",
				ZonaSulBaseURL:  "https://www.zonasul.com.br",
				ExtraBaseURL:    "https://www.extramercado.com.br",
				InstaleapAPIURL: "https://nextgentheadless.instaleap.io/api/v3",
				PageSize:        24,
				MaxPages:        3,
			},
			Refresh: RefreshConfig{Enabled: true, Cron: "0 3 5 * *"},
			List:    ListConfig{DefaultCEP: "22041-001"},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when server port is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty port")
		}
	})

	t.Run("fails when a source base URL is missing", func(t *testing.T) {
		cfg := valid()
		cfg.Sources.ZonaSulBaseURL = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing base URL")
		}
	})

	t.Run("fails when refresh is enabled without a cron expression", func(t *testing.T) {
		cfg := valid()
		cfg.Refresh.Cron = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing cron expression")
		}
	})

	t.Run("allows an empty cron when refresh is disabled", func(t *testing.T) {
		cfg := valid()
		cfg.Refresh.Enabled = false
		cfg.Refresh.Cron = ""
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when the default CEP is missing", func(t *testing.T) {
		cfg := valid()
		cfg.List.DefaultCEP = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for missing default CEP")
		}
	})
}
