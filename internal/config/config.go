package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort          = 2333
	defaultEnv           = "development"
	defaultDBHost        = "127.0.0.1"
	defaultDBPort        = 3306
	defaultDBUser        = "root"
	defaultDBName        = "pagecraft"
	defaultDBCharset     = "utf8mb4"
	defaultRedisHost     = "localhost"
	defaultRedisPort     = 6379
	defaultJWTTTL        = 7 * 24 * time.Hour
	defaultDraftTTL      = 24 * time.Hour
	defaultBackupEvery   = 24 * time.Hour
	defaultRateLimit     = 50
	defaultHTTPCacheTTL  = 15 * time.Second
	defaultLinkMinLength = 1

	DraftDriverRedis  = "redis"
	DraftDriverMemory = "memory"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string
	Database       DatabaseConfig
	Redis          RedisConfig
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	Paths          PathsConfig
	Drafts         DraftsConfig
	Form           FormConfig
	Menu           MenuConfig
	Backup         BackupConfig
	Admin          AdminConfig
	RateLimit      RateLimitConfig
	HTTPCache      HTTPCacheConfig
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
	Params   map[string]string
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

type PathsConfig struct {
	Logs    string
	Backups string
}

type DraftsConfig struct {
	Driver string
	TTL    time.Duration
}

type FormConfig struct {
	KeepOneEntry bool
}

type MenuConfig struct {
	RequireLogo   bool
	LinkMinLength int
}

type BackupConfig struct {
	Enable   bool
	Interval time.Duration
	S3       S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	PathStyle       bool
}

// Enabled reports whether uploads go to S3 instead of the local directory.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// AdminConfig describes the user created on first start when no user exists.
type AdminConfig struct {
	Username       string
	Password       string
	OrganizationID string
}

type RateLimitConfig struct {
	Disable bool
	Max     int
}

type HTTPCacheConfig struct {
	Disable bool
	TTL     time.Duration
}

// Load reads and validates the YAML file at configPath.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content over the defaults.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}
	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:    defaultDBHost,
			Port:    defaultDBPort,
			User:    defaultDBUser,
			Name:    defaultDBName,
			Charset: defaultDBCharset,
		},
		Redis:     RedisConfig{Host: defaultRedisHost, Port: defaultRedisPort},
		JWTTTL:    defaultJWTTTL,
		Drafts:    DraftsConfig{Driver: DraftDriverRedis, TTL: defaultDraftTTL},
		Menu:      MenuConfig{LinkMinLength: defaultLinkMinLength},
		Backup:    BackupConfig{Interval: defaultBackupEvery},
		RateLimit: RateLimitConfig{Max: defaultRateLimit},
		HTTPCache: HTTPCacheConfig{TTL: defaultHTTPCacheTTL},
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Drafts.Driver != DraftDriverRedis && c.Drafts.Driver != DraftDriverMemory {
		return fmt.Errorf("invalid drafts.driver %q, expected redis or memory", c.Drafts.Driver)
	}
	if c.Backup.Enable && c.Backup.Interval < time.Minute {
		return fmt.Errorf("invalid backup.interval %s, expected at least 1m", c.Backup.Interval)
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required outside development")
	}
	return nil
}

// IsDev reports whether the server runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == defaultEnv }

// LogDir returns the absolute log directory.
func (c *AppConfig) LogDir() string { return ResolveRuntimePath(c.Paths.Logs, "logs") }

// BackupDir returns the absolute local backup directory.
func (c *AppConfig) BackupDir() string { return ResolveRuntimePath(c.Paths.Backups, "backups") }
