package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver      string
	DBAutoMigrate bool
	DBLogLevel    string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret    string
	RateLimitRPS float64

	OTLPEndpoint string
	ServiceName  string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "oneshelf")
	v.SetDefault("MYSQL_USER", "oneshelf")
	v.SetDefault("MYSQL_PASS", "oneshelf")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("SQLITE_PATH", "oneshelf.db")

	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RATE_LIMIT_RPS", 20)

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "oneshelf-api")
	return v
}

func Load() *Config {
	v := newViper()
	return &Config{
		AppPort:  v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:      v.GetString("DB_DRIVER"),
		DBAutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		DBLogLevel:    v.GetString("DB_LOG_LEVEL"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		PostgresDSN: v.GetString("POSTGRES_DSN"),
		SQLitePath:  v.GetString("SQLITE_PATH"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		RateLimitRPS: v.GetFloat64("RATE_LIMIT_RPS"),

		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
	}
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; clientFoundRows makes RowsAffected count
	// matched rows, which the loan store relies on
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
