package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Identity   ServiceConfig    `mapstructure:"identity"`
	OAuth2     ServiceConfig    `mapstructure:"oauth2"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServiceConfig holds the admin endpoint of one upstream service
type ServiceConfig struct {
	URL   string `mapstructure:"url"`   // Admin API base URL
	Token string `mapstructure:"token"` // Bearer token for the admin API (optional)
}

// PaginationConfig bounds collection fetches
type PaginationConfig struct {
	PageSize  int           `mapstructure:"page_size"`
	MaxPages  int           `mapstructure:"max_pages"`
	PageDelay time.Duration `mapstructure:"page_delay"` // courtesy delay between pages
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // empty disables the disk cache
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Identity: ServiceConfig{URL: "http://127.0.0.1:4434"},
		OAuth2:   ServiceConfig{URL: "http://127.0.0.1:4445"},
		Pagination: PaginationConfig{
			PageSize:  250,
			MaxPages:  20,
			PageDelay: 50 * time.Millisecond,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "warden", "warden.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "warden", "warden.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "warden")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "warden")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "warden", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "warden", "cache")
	}
}

// DefaultConfigFile returns the path SaveConfig writes to
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides: WARDEN_IDENTITY_URL, WARDEN_PAGINATION_PAGE_SIZE, ...
	v.SetEnvPrefix("WARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only overrides keys viper already knows about
	def := DefaultConfig()
	v.SetDefault("identity.url", def.Identity.URL)
	v.SetDefault("identity.token", def.Identity.Token)
	v.SetDefault("oauth2.url", def.OAuth2.URL)
	v.SetDefault("oauth2.token", def.OAuth2.Token)
	v.SetDefault("pagination.page_size", def.Pagination.PageSize)
	v.SetDefault("pagination.max_pages", def.Pagination.MaxPages)
	v.SetDefault("pagination.page_delay", def.Pagination.PageDelay)
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	return v
}

// LoadConfig loads configuration from file, .env and environment.
// An empty configFile searches the default locations.
func LoadConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := newViper(configFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to configFile (DefaultConfigFile when empty)
func SaveConfig(cfg *Config, configFile string) error {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Set fields individually to keep snake_case key names
	v.Set("identity.url", cfg.Identity.URL)
	v.Set("identity.token", cfg.Identity.Token)
	v.Set("oauth2.url", cfg.OAuth2.URL)
	v.Set("oauth2.token", cfg.OAuth2.Token)
	v.Set("pagination.page_size", cfg.Pagination.PageSize)
	v.Set("pagination.max_pages", cfg.Pagination.MaxPages)
	v.Set("pagination.page_delay", cfg.Pagination.PageDelay.String())
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveToken updates the admin tokens in configFile, keeping every other setting
func SaveToken(configFile, identityToken, oauth2Token string) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}
	cfg.Identity.Token = identityToken
	cfg.OAuth2.Token = oauth2Token
	return SaveConfig(cfg, configFile)
}

// IsConfigured returns true if both admin endpoints are set
func (c *Config) IsConfigured() bool {
	return c.Identity.URL != "" && c.OAuth2.URL != ""
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
