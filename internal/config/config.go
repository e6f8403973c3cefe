package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Log struct {
		Level       string
		Development bool
	}
	ImageGen        ImageGenConfig
	SessionLifetime time.Duration
	InsecureCookies bool

	// ResetClearsSubject selects which named reset the single "reset"
	// action in the UI performs.
	ResetClearsSubject bool
}

// ImageGenConfig configures the optional image render backend. An empty
// APIKey disables rendering.
type ImageGenConfig struct {
	APIKey        string
	Model         string
	AspectRatio   string
	RatePerMinute int
	CacheTTL      time.Duration
}

// OIDCEnabled reports whether sign-in is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (PRISM_ prefix) and optional kernel-prism.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRISM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("kernel-prism")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "kernel-prism.db")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("insecure_cookies", false)
	v.SetDefault("reset.clear_subject", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("imagegen.model", "imagen-4.0-generate-001")
	v.SetDefault("imagegen.aspect_ratio", "1:1")
	v.SetDefault("imagegen.rate_per_minute", 10)
	v.SetDefault("imagegen.cache_ttl", "1h")

	// The image service key is commonly exported without our prefix.
	_ = v.BindEnv("imagegen.api_key", "PRISM_IMAGEGEN_API_KEY", "GEMINI_API_KEY", "API_KEY")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")
	cfg.ImageGen.APIKey = v.GetString("imagegen.api_key")
	cfg.ImageGen.Model = v.GetString("imagegen.model")
	cfg.ImageGen.AspectRatio = v.GetString("imagegen.aspect_ratio")
	cfg.ImageGen.RatePerMinute = v.GetInt("imagegen.rate_per_minute")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")
	cfg.ResetClearsSubject = v.GetBool("reset.clear_subject")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRISM_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	cacheTTL, err := time.ParseDuration(v.GetString("imagegen.cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRISM_IMAGEGEN_CACHE_TTL: %w", err)
	}
	cfg.ImageGen.CacheTTL = cacheTTL

	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("PRISM_DB_DRIVER must be one of sqlite3, mysql, postgres (got %q)", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("PRISM_DB_DSN is required")
	}
	if cfg.ImageGen.RatePerMinute <= 0 {
		return nil, fmt.Errorf("PRISM_IMAGEGEN_RATE_PER_MINUTE must be positive")
	}

	if cfg.OIDCEnabled() {
		if cfg.OIDC.ClientID == "" {
			return nil, fmt.Errorf("PRISM_OIDC_CLIENT_ID is required when PRISM_OIDC_ISSUER is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("PRISM_OIDC_CLIENT_SECRET is required when PRISM_OIDC_ISSUER is set")
		}
		if cfg.OIDC.RedirectURL == "" {
			return nil, fmt.Errorf("PRISM_OIDC_REDIRECT_URL is required when PRISM_OIDC_ISSUER is set")
		}
	}

	return cfg, nil
}
