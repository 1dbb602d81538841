package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers understood by the server.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
	} `yaml:"database"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Session struct {
		IdleTTL       string `yaml:"idle_ttl"`
		SweepSchedule string `yaml:"sweep_schedule"`
	} `yaml:"session"`
	Admin struct {
		Email        string `yaml:"email"`
		PasswordHash string `yaml:"password_hash"`
		JWTSecret    string `yaml:"jwt_secret"`
		TokenTTL     string `yaml:"token_ttl"`
	} `yaml:"admin"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// Load reads YAML config from path. Secrets may be supplied through the
// environment instead of the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DATABASE_DRIVER":     &c.Database.Driver,
		"POSTGRES_URL":        &c.Postgres.URL,
		"REDIS_ADDR":          &c.Redis.Addr,
		"ADMIN_EMAIL":         &c.Admin.Email,
		"ADMIN_PASSWORD_HASH": &c.Admin.PasswordHash,
		"JWT_SECRET":          &c.Admin.JWTSecret,
		"RABBITMQ_URL":        &c.RabbitMQ.URL,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
}

// DatabaseDriver returns the configured driver, inferring postgres when only
// a postgres URL is set.
func (c Config) DatabaseDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if driver != "" {
		return driver
	}
	if c.Postgres.URL != "" {
		return DriverPostgres
	}
	return DriverMemory
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
