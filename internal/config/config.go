// Package config holds the service configuration: a YAML file with
// environment-variable overrides for secrets, plus the tunable
// constants in constants.go.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration loaded at startup.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	JWTSecret string `yaml:"jwt_secret"`

	// RankingMode selects the ranked-retrieval realization: "store"
	// (sorted DB query) or "heap" (in-memory lazy-invalidation heap).
	RankingMode string `yaml:"ranking_mode"`

	ClusterRadiusKm float64 `yaml:"cluster_radius_km"`
	// ClusterCron is a standard 5-field cron expression; empty disables
	// the scheduled clustering pass.
	ClusterCron string `yaml:"cluster_cron"`

	GeocodeBaseURL string `yaml:"geocode_base_url"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
}

// Load reads the YAML config at path (missing file is fine — defaults
// apply) and then lets environment variables override the sensitive
// fields.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:      ":8080",
		DBHost:          "localhost",
		DBPort:          "5432",
		DBUser:          "user",
		DBPassword:      "password",
		DBName:          "civicsensedb",
		RedisAddr:       "localhost:6380",
		RankingMode:     "store",
		ClusterRadiusKm: DefaultClusterRadiusKm,
		GeocodeBaseURL:  "https://nominatim.openstreetmap.org",
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg.DBHost, "DB_HOST")
	overrideFromEnv(&cfg.DBPort, "DB_PORT")
	overrideFromEnv(&cfg.DBUser, "DB_USER")
	overrideFromEnv(&cfg.DBPassword, "DB_PASSWORD")
	overrideFromEnv(&cfg.DBName, "DB_NAME")
	overrideFromEnv(&cfg.RedisAddr, "REDIS_ADDR")
	overrideFromEnv(&cfg.RedisPassword, "REDIS_PASSWORD")
	overrideFromEnv(&cfg.JWTSecret, "JWT_SECRET")
	overrideFromEnv(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")

	return cfg, nil
}

// DSN returns the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func overrideFromEnv(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}
