package config

import (
	"fmt"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	App struct {
		Env string
	}
	Server struct {
		Addr string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Log struct {
		Level string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		URLExpiry time.Duration
	}
	AWS struct {
		Profile string
	}
}

// IsDevelopment reports whether verbose error output may be exposed. Only an
// explicit "development" qualifies.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, EnvDevelopment)
}

// Load reads configuration from environment variables, a .env file and an
// optional config file. An explicit configFile must exist; the implicit
// ./config.{yaml,json,toml} lookup is best effort. Durations accept Go syntax
// ("90m", "24h") and whole days ("7d").
func Load(configFile string) (Config, error) {
	_ = godotenv.Load() // optional file, never overrides the real environment

	v := viper.New()
	v.SetEnvPrefix("TASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", EnvProduction)
	v.SetDefault("server.addr", "0.0.0.0:3000")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		v.SetDefault("server.addr", net.JoinHostPort("0.0.0.0", port))
	}
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/tasks.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "task-exports")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlexpiry", 15*time.Minute)
	v.SetDefault("aws.profile", "")

	// conventional names used by the existing deployment scripts
	_ = v.BindEnv("app.env", "TASKS_APP_ENV", "APP_ENV", "NODE_ENV")
	_ = v.BindEnv("auth.jwtsecret", "TASKS_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.tokenttl", "TASKS_AUTH_TOKENTTL", "JWT_EXPIRES_IN")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server address is required")
	}
	return nil
}

// durationHook parses string durations, including a whole-day "d" unit.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return parseDuration(reflect.ValueOf(data).String())
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
