package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"blog/app/repositories"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, so db.driver is
// read from BLOG_DB_DRIVER.
const EnvPrefix = "BLOG"

// Config is the resolved application configuration
type Config struct {
	Addr string `mapstructure:"addr"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	DB struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"db"`

	Templates struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"templates"`

	Index struct {
		Limit int `mapstructure:"limit"`
	} `mapstructure:"index"`

	Admin struct {
		Username     string `mapstructure:"username"`
		PasswordHash string `mapstructure:"password_hash"`
	} `mapstructure:"admin"`

	RabbitMQ struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"rabbitmq"`

	RequestID struct {
		Generate bool `mapstructure:"generate"`
	} `mapstructure:"request_id"`
}

// SetDefaults registers the built-in value of every key. Keys must be known
// to viper for AutomaticEnv to pick them up during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("db.driver", "badger")
	v.SetDefault("db.path", "data/badger")
	v.SetDefault("db.dsn", "")
	v.SetDefault("templates.dir", "")
	v.SetDefault("index.limit", 5)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("request_id.generate", false)
}

// Load reads configuration from, in increasing priority: defaults, the
// config file, a .env file and the environment. An empty configFile looks
// for config.yaml in the working directory and tolerates its absence.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case repositories.DriverBadger, repositories.DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("db.path is required for the %s driver", c.DB.Driver)
		}
	case repositories.DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	if c.Index.Limit < 1 {
		return fmt.Errorf("index.limit must be a positive integer, got %d", c.Index.Limit)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
