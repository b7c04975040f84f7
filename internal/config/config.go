package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr         string `yaml:"addr"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // mongo | memory
		Mongo  struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // redis | memory
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Bus struct {
		Kind  string `yaml:"kind"` // redis | noop
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		// PublishTimeout acota el publish para que un broker caído
		// nunca bloquee el write path.
		PublishTimeout string `yaml:"publish_timeout"`
	} `yaml:"bus"`

	Auth struct {
		// Secret HS256 para validar bearer tokens emitidos por el identity provider.
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"email"`
}

// Load lee el YAML, aplica overrides de entorno y defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default retorna una configuración utilizable sin YAML (memory everything).
func Default() *Config {
	var c Config
	c.applyEnv()
	_ = c.applyDefaults()
	return &c
}

func (c *Config) applyEnv() {
	if v, ok := getEnvStr("AGORA_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("AGORA_MONGO_URI"); ok {
		c.Storage.Mongo.URI = v
	}
	if v, ok := getEnvStr("AGORA_MONGO_DB"); ok {
		c.Storage.Mongo.Database = v
	}
	if v, ok := getEnvStr("AGORA_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
		if c.Bus.Redis.Addr == "" {
			c.Bus.Redis.Addr = v
		}
	}
	if v, ok := getEnvInt("AGORA_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("AGORA_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvStr("AGORA_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
}

func (c *Config) applyDefaults() error {
	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "30s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "agora"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Bus.Kind == "" {
		// Sin redis configurado el bus degrada a noop: los writes siguen
		// funcionando y la staleness queda acotada por TTL.
		if c.Bus.Redis.Addr == "" {
			c.Bus.Kind = "noop"
		} else {
			c.Bus.Kind = "redis"
		}
	}
	if c.Bus.PublishTimeout == "" {
		c.Bus.PublishTimeout = "2s"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}

	// validate string durations
	for _, d := range []string{
		c.Server.ReadTimeout,
		c.Server.WriteTimeout,
		c.Cache.Memory.DefaultTTL,
		c.Bus.PublishTimeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return err
		}
	}
	return nil
}

// MustDuration parsea una duración ya validada por Load.
func MustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
