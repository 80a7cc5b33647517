package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".metaops"
	DefaultConfigFile = "config.yaml"

	// StoreURLEnv overrides the configured store when set
	StoreURLEnv = "SHOPIFY_STORE_URL"
)

// Config represents the application configuration
type Config struct {
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Retry    RetryConfig    `yaml:"retry"`
	Save     SaveConfig     `yaml:"save"`
	Grouping GroupingConfig `yaml:"grouping"`
	Fitguide FitguideConfig `yaml:"fitguide"`
	Cache    CacheConfig    `yaml:"cache"`
	Prefs    PrefsConfig    `yaml:"prefs"`
	Drafts   DraftsConfig   `yaml:"drafts"`
	Output   OutputConfig   `yaml:"output"`
	Journal  JournalConfig  `yaml:"journal,omitempty"`
}

// ShopifyConfig holds Admin API settings
type ShopifyConfig struct {
	Store             string  `yaml:"store"`            // Shop domain (e.g. "livid.myshopify.com")
	AccessTokenEnv    string  `yaml:"access_token_env"` // Environment variable for the Admin API token
	APIVersion        string  `yaml:"api_version"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RetryConfig controls GraphQL retries
type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	BaseWaitMs      int `yaml:"base_wait_ms"`
	MaxThrottleWait int `yaml:"max_throttle_wait_ms"`
}

// SaveConfig controls the save orchestrator
type SaveConfig struct {
	BatchSize   int    `yaml:"batch_size"`
	ClearPolicy string `yaml:"clear_policy"` // "all" or "succeeded"
}

// GroupingConfig controls group detection and auto-linking
type GroupingConfig struct {
	AutoLinkVendors []string `yaml:"auto_link_vendors"`
}

// FitguideConfig controls fitguide matching
type FitguideConfig struct {
	SeasonTags []string `yaml:"season_tags"`
}

// CacheConfig controls the local snapshot cache
type CacheConfig struct {
	File          string `yaml:"file"`
	MaxAgeSeconds int    `yaml:"max_age_seconds"`
}

// PrefsConfig holds the preferences file location
type PrefsConfig struct {
	File string `yaml:"file"`
}

// DraftsConfig holds the pending edit file location
type DraftsConfig struct {
	File string `yaml:"file"`
}

// OutputConfig holds file export settings
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Pretty bool   `yaml:"pretty"`
}

// JournalConfig holds the optional save journal settings
type JournalConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	SSLMode     string `yaml:"ssl_mode"`
}

// ClickHouseConfig holds ClickHouse mirror settings
type ClickHouseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	Secure      bool   `yaml:"secure"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Shopify: ShopifyConfig{
			Store:             "",
			AccessTokenEnv:    "SHOPIFY_ADMIN_ACCESS_TOKEN",
			APIVersion:        "2025-10",
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			BaseWaitMs:      1000,
			MaxThrottleWait: 10000,
		},
		Save: SaveConfig{
			BatchSize:   25,
			ClearPolicy: "all",
		},
		Grouping: GroupingConfig{
			AutoLinkVendors: []string{"Livid Jeans", "Livid Unisex"},
		},
		Fitguide: FitguideConfig{
			SeasonTags: []string{"SS26"},
		},
		Cache: CacheConfig{
			File:          "output/.metaops-cache.json",
			MaxAgeSeconds: 300,
		},
		Prefs: PrefsConfig{
			File: "output/.metaops-prefs.json",
		},
		Drafts: DraftsConfig{
			File: "output/.metaops-drafts.json",
		},
		Output: OutputConfig{
			Dir:    "./output",
			Pretty: true,
		},
		Journal: JournalConfig{
			Enabled: false,
			Postgres: PostgresConfig{
				Host:        "localhost",
				Port:        5432,
				Database:    "metaops",
				UsernameEnv: "POSTGRES_USER",
				PasswordEnv: "POSTGRES_PASSWORD",
				SSLMode:     "prefer",
			},
			ClickHouse: ClickHouseConfig{
				Enabled:     false,
				Host:        "localhost",
				Port:        9000,
				Database:    "metaops",
				UsernameEnv: "CLICKHOUSE_USERNAME",
				PasswordEnv: "CLICKHOUSE_PASSWORD",
			},
		},
	}
}

// Timeout returns the HTTP timeout as a duration
func (c ShopifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BaseWait returns the base retry wait as a duration
func (c RetryConfig) BaseWait() time.Duration {
	return time.Duration(c.BaseWaitMs) * time.Millisecond
}

// ThrottleCap returns the longest wait honored for a throttled response
func (c RetryConfig) ThrottleCap() time.Duration {
	return time.Duration(c.MaxThrottleWait) * time.Millisecond
}

// MaxAge returns the snapshot staleness window
func (c CacheConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}

// LoadEnv reads a .env file from the working directory if one exists
func LoadEnv() error {
	return LoadEnvFrom(".env")
}

// LoadEnvFrom reads the given env file; a missing file is not an error.
// Variables already set in the environment win.
func LoadEnvFrom(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration from the config file
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path and applies
// environment overrides
func LoadFrom(path string) (*Config, error) {
	config, err := ReadFrom(path)
	if err != nil {
		return nil, err
	}
	applyEnv(config)
	return config, nil
}

// ReadFrom reads the configuration file without environment overrides.
// A missing file yields the defaults.
func ReadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// SaveTo writes the configuration to a specific path
func SaveTo(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyDefaults fills in missing values with defaults
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Shopify.AccessTokenEnv == "" {
		config.Shopify.AccessTokenEnv = defaults.Shopify.AccessTokenEnv
	}
	if config.Shopify.APIVersion == "" {
		config.Shopify.APIVersion = defaults.Shopify.APIVersion
	}
	if config.Shopify.TimeoutSeconds <= 0 {
		config.Shopify.TimeoutSeconds = defaults.Shopify.TimeoutSeconds
	}

	if config.Retry.MaxAttempts <= 0 {
		config.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if config.Retry.BaseWaitMs <= 0 {
		config.Retry.BaseWaitMs = defaults.Retry.BaseWaitMs
	}
	if config.Retry.MaxThrottleWait <= 0 {
		config.Retry.MaxThrottleWait = defaults.Retry.MaxThrottleWait
	}

	if config.Save.BatchSize <= 0 || config.Save.BatchSize > defaults.Save.BatchSize {
		config.Save.BatchSize = defaults.Save.BatchSize
	}
	if config.Save.ClearPolicy == "" {
		config.Save.ClearPolicy = defaults.Save.ClearPolicy
	}

	if config.Grouping.AutoLinkVendors == nil {
		config.Grouping.AutoLinkVendors = defaults.Grouping.AutoLinkVendors
	}
	if config.Fitguide.SeasonTags == nil {
		config.Fitguide.SeasonTags = defaults.Fitguide.SeasonTags
	}

	if config.Cache.File == "" {
		config.Cache.File = defaults.Cache.File
	}
	if config.Cache.MaxAgeSeconds <= 0 {
		config.Cache.MaxAgeSeconds = defaults.Cache.MaxAgeSeconds
	}
	if config.Prefs.File == "" {
		config.Prefs.File = defaults.Prefs.File
	}
	if config.Drafts.File == "" {
		config.Drafts.File = defaults.Drafts.File
	}
	if config.Output.Dir == "" {
		config.Output.Dir = defaults.Output.Dir
	}

	if config.Journal.Postgres.Port == 0 {
		config.Journal.Postgres.Port = defaults.Journal.Postgres.Port
	}
	if config.Journal.ClickHouse.Port == 0 {
		config.Journal.ClickHouse.Port = defaults.Journal.ClickHouse.Port
	}
}

// applyEnv applies environment overrides
func applyEnv(config *Config) {
	if store := os.Getenv(StoreURLEnv); store != "" {
		config.Shopify.Store = StripStoreURL(store)
	}
}

// StripStoreURL removes any protocol prefix and trailing slash
func StripStoreURL(store string) string {
	store = strings.TrimSpace(store)
	store = strings.TrimPrefix(store, "https://")
	store = strings.TrimPrefix(store, "http://")
	return strings.TrimRight(store, "/")
}

// Set updates a value on this config by dotted key
func (c *Config) Set(key, value string) error {
	switch key {
	case "shopify.store":
		c.Shopify.Store = StripStoreURL(value)
	case "shopify.access_token_env":
		c.Shopify.AccessTokenEnv = value
	case "shopify.api_version":
		c.Shopify.APIVersion = value
	case "shopify.requests_per_second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		c.Shopify.RequestsPerSecond = f
	case "retry.max_attempts":
		return setInt(&c.Retry.MaxAttempts, key, value)
	case "retry.base_wait_ms":
		return setInt(&c.Retry.BaseWaitMs, key, value)
	case "save.batch_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if n < 1 || n > 25 {
			return fmt.Errorf("save.batch_size must be between 1 and 25")
		}
		c.Save.BatchSize = n
	case "save.clear_policy":
		if value != "all" && value != "succeeded" {
			return fmt.Errorf("save.clear_policy must be \"all\" or \"succeeded\"")
		}
		c.Save.ClearPolicy = value
	case "grouping.auto_link_vendors":
		c.Grouping.AutoLinkVendors = splitList(value)
	case "fitguide.season_tags":
		c.Fitguide.SeasonTags = splitList(value)
	case "cache.file":
		c.Cache.File = value
	case "cache.max_age_seconds":
		return setInt(&c.Cache.MaxAgeSeconds, key, value)
	case "prefs.file":
		c.Prefs.File = value
	case "drafts.file":
		c.Drafts.File = value
	case "output.dir":
		c.Output.Dir = value
	case "journal.enabled":
		c.Journal.Enabled = value == "true"
	case "journal.postgres.host":
		c.Journal.Postgres.Host = value
	case "journal.postgres.database":
		c.Journal.Postgres.Database = value
	case "journal.postgres.username_env":
		c.Journal.Postgres.UsernameEnv = value
	case "journal.postgres.password_env":
		c.Journal.Postgres.PasswordEnv = value
	case "journal.clickhouse.enabled":
		c.Journal.ClickHouse.Enabled = value == "true"
	case "journal.clickhouse.host":
		c.Journal.ClickHouse.Host = value
	case "journal.clickhouse.database":
		c.Journal.ClickHouse.Database = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return nil
}

// Get returns a value from this config by dotted key
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "shopify.store":
		return c.Shopify.Store, nil
	case "shopify.access_token_env":
		return c.Shopify.AccessTokenEnv, nil
	case "shopify.api_version":
		return c.Shopify.APIVersion, nil
	case "shopify.requests_per_second":
		return strconv.FormatFloat(c.Shopify.RequestsPerSecond, 'f', -1, 64), nil
	case "retry.max_attempts":
		return strconv.Itoa(c.Retry.MaxAttempts), nil
	case "retry.base_wait_ms":
		return strconv.Itoa(c.Retry.BaseWaitMs), nil
	case "save.batch_size":
		return strconv.Itoa(c.Save.BatchSize), nil
	case "save.clear_policy":
		return c.Save.ClearPolicy, nil
	case "grouping.auto_link_vendors":
		return strings.Join(c.Grouping.AutoLinkVendors, ","), nil
	case "fitguide.season_tags":
		return strings.Join(c.Fitguide.SeasonTags, ","), nil
	case "cache.file":
		return c.Cache.File, nil
	case "cache.max_age_seconds":
		return strconv.Itoa(c.Cache.MaxAgeSeconds), nil
	case "prefs.file":
		return c.Prefs.File, nil
	case "drafts.file":
		return c.Drafts.File, nil
	case "output.dir":
		return c.Output.Dir, nil
	case "journal.enabled":
		return strconv.FormatBool(c.Journal.Enabled), nil
	case "journal.postgres.host":
		return c.Journal.Postgres.Host, nil
	case "journal.postgres.database":
		return c.Journal.Postgres.Database, nil
	case "journal.postgres.username_env":
		return c.Journal.Postgres.UsernameEnv, nil
	case "journal.postgres.password_env":
		return c.Journal.Postgres.PasswordEnv, nil
	case "journal.clickhouse.enabled":
		return strconv.FormatBool(c.Journal.ClickHouse.Enabled), nil
	case "journal.clickhouse.host":
		return c.Journal.ClickHouse.Host, nil
	case "journal.clickhouse.database":
		return c.Journal.ClickHouse.Database, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Keys lists every key accepted by Set and Get
func Keys() []string {
	return []string{
		"shopify.store", "shopify.access_token_env", "shopify.api_version", "shopify.requests_per_second",
		"retry.max_attempts", "retry.base_wait_ms",
		"save.batch_size", "save.clear_policy",
		"grouping.auto_link_vendors", "fitguide.season_tags",
		"cache.file", "cache.max_age_seconds", "prefs.file", "drafts.file", "output.dir",
		"journal.enabled", "journal.postgres.host", "journal.postgres.database",
		"journal.postgres.username_env", "journal.postgres.password_env",
		"journal.clickhouse.enabled", "journal.clickhouse.host", "journal.clickhouse.database",
	}
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
