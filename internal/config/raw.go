package config

import (
	"fmt"
	"strings"
	"time"
)

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	JWTSecret      string            `yaml:"jwt_secret"`
	JWTTTL         string            `yaml:"jwt_ttl"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	Paths          rawPathsConfig    `yaml:"paths"`
	Drafts         rawDraftsConfig   `yaml:"drafts"`
	Form           rawFormConfig     `yaml:"form"`
	Menu           rawMenuConfig     `yaml:"menu"`
	Backup         rawBackupConfig   `yaml:"backup"`
	Admin          rawAdminConfig    `yaml:"admin"`
	RateLimit      rawRateLimit      `yaml:"rate_limit"`
	HTTPCache      rawHTTPCache      `yaml:"http_cache"`
}

type rawDatabaseConfig struct {
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	Params   map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type rawDraftsConfig struct {
	Driver string `yaml:"driver"`
	TTL    string `yaml:"ttl"`
}

type rawFormConfig struct {
	KeepOneEntry *bool `yaml:"keep_one_entry"`
}

type rawMenuConfig struct {
	RequireLogo   *bool `yaml:"require_logo"`
	LinkMinLength int   `yaml:"link_min_length"`
}

type rawBackupConfig struct {
	Enable   *bool       `yaml:"enable"`
	Interval string      `yaml:"interval"`
	S3       rawS3Config `yaml:"s3"`
}

type rawS3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	PathStyle       *bool  `yaml:"path_style"`
}

type rawAdminConfig struct {
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	OrganizationID string `yaml:"organization_id"`
}

type rawRateLimit struct {
	Disable *bool `yaml:"disable"`
	Max     int   `yaml:"max"`
}

type rawHTTPCache struct {
	Disable *bool  `yaml:"disable"`
	TTL     string `yaml:"ttl"`
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Env)); v != "" {
		cfg.Env = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)
	cfg.JWTSecret = strings.TrimSpace(raw.JWTSecret)
	cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	setString(&cfg.Paths.Logs, raw.Paths.Logs)
	setString(&cfg.Paths.Backups, raw.Paths.Backups)

	if v := strings.ToLower(strings.TrimSpace(raw.Drafts.Driver)); v != "" {
		cfg.Drafts.Driver = v
	}
	setBool(&cfg.Form.KeepOneEntry, raw.Form.KeepOneEntry)
	setBool(&cfg.Menu.RequireLogo, raw.Menu.RequireLogo)
	if raw.Menu.LinkMinLength > 0 {
		cfg.Menu.LinkMinLength = raw.Menu.LinkMinLength
	}

	setBool(&cfg.Backup.Enable, raw.Backup.Enable)
	cfg.Backup.S3 = S3Config{
		Bucket:          strings.TrimSpace(raw.Backup.S3.Bucket),
		Region:          strings.TrimSpace(raw.Backup.S3.Region),
		Endpoint:        strings.TrimRight(strings.TrimSpace(raw.Backup.S3.Endpoint), "/"),
		AccessKeyID:     strings.TrimSpace(raw.Backup.S3.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(raw.Backup.S3.SecretAccessKey),
		Prefix:          strings.Trim(strings.TrimSpace(raw.Backup.S3.Prefix), "/"),
	}
	setBool(&cfg.Backup.S3.PathStyle, raw.Backup.S3.PathStyle)
	if cfg.Backup.S3.Region == "" {
		cfg.Backup.S3.Region = "auto"
	}

	cfg.Admin = AdminConfig{
		Username:       strings.TrimSpace(raw.Admin.Username),
		Password:       raw.Admin.Password,
		OrganizationID: strings.TrimSpace(raw.Admin.OrganizationID),
	}
	setBool(&cfg.RateLimit.Disable, raw.RateLimit.Disable)
	if raw.RateLimit.Max > 0 {
		cfg.RateLimit.Max = raw.RateLimit.Max
	}
	setBool(&cfg.HTTPCache.Disable, raw.HTTPCache.Disable)

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"jwt_ttl", raw.JWTTTL, &cfg.JWTTTL},
		{"drafts.ttl", raw.Drafts.TTL, &cfg.Drafts.TTL},
		{"backup.interval", raw.Backup.Interval, &cfg.Backup.Interval},
		{"http_cache.ttl", raw.HTTPCache.TTL, &cfg.HTTPCache.TTL},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.raw); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}
	return nil
}

func applyRawDatabaseConfig(current DatabaseConfig, raw rawDatabaseConfig) DatabaseConfig {
	setString(&current.DSN, raw.DSN)
	setString(&current.Host, raw.Host)
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	setString(&current.User, raw.User)
	current.Password = raw.Password
	setString(&current.Name, raw.Name)
	setString(&current.Charset, raw.Charset)
	if len(raw.Params) > 0 {
		current.Params = make(map[string]string, len(raw.Params))
		for k, v := range raw.Params {
			k, v = strings.TrimSpace(k), strings.TrimSpace(v)
			if k != "" && v != "" {
				current.Params[k] = v
			}
		}
	}
	return current
}

func applyRawRedisConfig(current RedisConfig, raw rawRedisConfig) RedisConfig {
	setString(&current.URL, raw.URL)
	setString(&current.Host, raw.Host)
	if raw.Port != 0 {
		current.Port = raw.Port
	}
	current.Password = strings.TrimSpace(raw.Password)
	if raw.DB != nil {
		current.DB = *raw.DB
	}
	return current
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", v)
	}
	*dst = d
	return nil
}
