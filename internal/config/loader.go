package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Server holds HTTP server settings.
type Server struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds Postgres connection settings.
type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// URL renders the connection string consumed by both the pool and the
// migrator.
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password),
		d.Host, d.Port, d.DBName, d.SSLMode)
}

// Redis holds the optional recompute-lock backend settings. An empty Addr
// disables the shared lock.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Analytics holds the visit-event export settings.
type Analytics struct {
	BaseURL string `mapstructure:"base_url"`
	Project string `mapstructure:"project"`
	Token   string `mapstructure:"token"`
}

// Admin holds the write-surface auth settings.
type Admin struct {
	Token string `mapstructure:"token"`
}

// Config is the full application configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Redis     Redis     `mapstructure:"redis"`
	Analytics Analytics `mapstructure:"analytics"`
	Admin     Admin     `mapstructure:"admin"`
}

// Load reads config.yaml from configPath and applies CATALOG_-prefixed
// environment overrides (CATALOG_DATABASE_HOST and so on). A missing file
// is not an error; defaults plus environment carry a local setup.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "games_catalog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("analytics.base_url", "")
	v.SetDefault("analytics.project", "")

	for _, key := range []string{
		"server.port", "server.allowed_origins",
		"database.host", "database.port", "database.user",
		"database.password", "database.dbname", "database.sslmode",
		"redis.addr", "redis.password", "redis.db",
		"analytics.base_url", "analytics.project", "analytics.token",
		"admin.token",
	} {
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
