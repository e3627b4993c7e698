package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"readTimeout"`
	WriteTimeout string `yaml:"writeTimeout"`
	IdleTimeout  string `yaml:"idleTimeout"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // team-visio
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Security struct {
	JWTSecret  string `yaml:"jwtSecret"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	AccessTTL  string `yaml:"accessTTL"`
	ClockSkew  string `yaml:"clockSkew"`
	SessionTTL string `yaml:"sessionTTL"`
	BcryptCost int    `yaml:"bcryptCost"`
	MinLength  int    `yaml:"passwordMinLength"`
}

type Jitsi struct {
	Domain        string `yaml:"domain"`     // meet.jit.si
	RoomPrefix    string `yaml:"roomPrefix"` // team-visio-
	ScriptTimeout string `yaml:"scriptTimeout"`
}

type Config struct {
	Env      string   `yaml:"env"` // dev|testing|prod
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Postgres Postgres `yaml:"postgres"`
	Security Security `yaml:"security"`
	Jitsi    Jitsi    `yaml:"jitsi"`
}

// LoadConfig читает yaml по CONFIG_PATH.
// Отсутствующий файл — не фатально: возвращаются дефолты,
// а бекенд деградирует во встроенное хранилище (см. Degraded).
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Degraded — true, когда строка подключения не задана
func (c *Config) Degraded() bool {
	return c.Postgres.DSN == ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func (c *Config) validate() error {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Security.JWTSecret == "" && c.IsProduction() {
		return errors.New("security.jwtSecret is required in prod")
	}
	if c.Security.JWTSecret == "" {
		c.Security.JWTSecret = "dev-secret-change-me"
	}
	if c.Security.Issuer == "" {
		c.Security.Issuer = "team-visio"
	}
	if c.Security.Audience == "" {
		c.Security.Audience = "team-visio-web"
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "team-visio"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Jitsi.Domain == "" {
		c.Jitsi.Domain = "meet.jit.si"
	}
	if c.Jitsi.RoomPrefix == "" {
		c.Jitsi.RoomPrefix = "team-visio-"
	}
	return nil
}

func (c *Config) AccessTTL() time.Duration {
	return parseDurationOr(15*time.Minute, c.Security.AccessTTL)
}

func (c *Config) ClockSkew() time.Duration {
	return parseDurationOr(30*time.Second, c.Security.ClockSkew)
}

func (c *Config) SessionTTL() time.Duration {
	return parseDurationOr(720*time.Hour, c.Security.SessionTTL)
}

func (c *Config) ScriptTimeout() time.Duration {
	return parseDurationOr(10*time.Second, c.Jitsi.ScriptTimeout)
}

func (c *Config) ReadTimeout() time.Duration {
	return parseDurationOr(15*time.Second, c.HTTP.ReadTimeout)
}

func (c *Config) WriteTimeout() time.Duration {
	return parseDurationOr(30*time.Second, c.HTTP.WriteTimeout)
}

func (c *Config) IdleTimeout() time.Duration {
	return parseDurationOr(60*time.Second, c.HTTP.IdleTimeout)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
