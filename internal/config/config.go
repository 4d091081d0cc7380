package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultTokenTTL is used when JWT_EXPIRE is not set.
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrMissingJWTSecret is returned by Load when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not defined")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	DBDriver      string
	DBDSN         string
	MongoDatabase string
	ResetDB       bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	CORSAllowOrigins []string
	LogLevel         string
	LogFormat        string
	SwaggerHost      string

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load builds Config from the environment (and an optional .env / CONFIG_FILE) with sensible defaults.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("server_port", "5000")
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "15s")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_dsn", "user:password@tcp(localhost:3306)/sweetshop?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("mongo_database", "sweetshop")
	v.SetDefault("reset_db", false)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("jwt_expire", "7d")
	v.SetDefault("bcrypt_cost", 10)
	v.SetDefault("cors_allow_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("seed_admin_name", "Admin")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	secret := strings.TrimSpace(v.GetString("jwt_secret"))
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	tokenTTL, err := ParseTTL(v.GetString("jwt_expire"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}

	driver := strings.ToLower(v.GetString("db_driver"))
	switch driver {
	case "mysql", "postgres", "sqlite", "mongo":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", driver)
	}

	return &Config{
		ServerPort:       v.GetString("server_port"),
		ReadTimeout:      v.GetDuration("server_read_timeout"),
		WriteTimeout:     v.GetDuration("server_write_timeout"),
		DBDriver:         driver,
		DBDSN:            v.GetString("db_dsn"),
		MongoDatabase:    v.GetString("mongo_database"),
		ResetDB:          v.GetBool("reset_db"),
		RedisAddr:        v.GetString("redis_addr"),
		RedisDB:          v.GetInt("redis_db"),
		RedisPass:        v.GetString("redis_password"),
		CacheTTL:         v.GetDuration("cache_ttl"),
		JWTSecret:        secret,
		TokenTTL:         tokenTTL,
		BcryptCost:       v.GetInt("bcrypt_cost"),
		CORSAllowOrigins: splitList(v.GetString("cors_allow_origins")),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		SwaggerHost:      v.GetString("swagger_host"),

		SeedAdminName:     v.GetString("seed_admin_name"),
		SeedAdminEmail:    v.GetString("seed_admin_email"),
		SeedAdminPassword: v.GetString("seed_admin_password"),
	}, nil
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL      string
	SessionFile string
	LogLevel    string
}

// LoadClient reads the client settings. Unlike Load it needs no server secrets.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:5000/api")
	v.SetDefault("log_level", "warn")

	return &ClientConfig{
		APIURL:      strings.TrimSpace(v.GetString("api_url")),
		SessionFile: v.GetString("session_file"),
		LogLevel:    v.GetString("log_level"),
	}
}

// ParseTTL accepts Go durations ("168h", "30m") and day counts ("7d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTokenTTL, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
