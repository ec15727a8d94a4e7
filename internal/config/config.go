package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config describes all runtime settings of the scoring service.
//
// Load it once in main, validate, and pass it down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	Postgres struct {
		Enabled       bool
		URL           string
		RunMigrations bool
		MigrationsDir string
	}

	Redis struct {
		Enabled  bool
		Addr     string
		DB       int
		CacheTTL time.Duration
	}

	Auth struct {
		Required bool
		Secret   string
		TokenTTL time.Duration
		// client id -> bcrypt hash of the client secret
		Clients map[string]string
	}
}

const defaultSecret = "dev-secret-change-me"

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")
	c.Log.Level = envString("LOG_LEVEL", "info")

	port := envString("PORT", "8080")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.ReadTimeout = envDuration("HTTP_READ_TIMEOUT", 0)
	c.HTTP.WriteTimeout = envDuration("HTTP_WRITE_TIMEOUT", 0)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Postgres.Enabled = envBool("POSTGRES_ENABLED", false)
	c.Postgres.URL = envString("DATABASE_URL", "postgres://mm:mm@localhost:5432/mm?sslmode=disable")
	c.Postgres.RunMigrations = envBool("RUN_MIGRATIONS", false)
	c.Postgres.MigrationsDir = envString("MIGRATIONS_DIR", "") // empty => embedded

	c.Redis.Enabled = envBool("REDIS_ENABLED", false)
	c.Redis.Addr = envString("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = envInt("REDIS_DB", 0)
	c.Redis.CacheTTL = envDuration("SCORE_CACHE_TTL", 24*time.Hour)

	c.Auth.Required = envBool("AUTH_REQUIRED", false)
	c.Auth.Secret = envString("JWT_SECRET", defaultSecret)
	c.Auth.TokenTTL = envDuration("JWT_TTL", 24*time.Hour)

	clients, err := parseClients(os.Getenv("AUTH_CLIENTS"))
	if err != nil {
		return Config{}, err
	}
	c.Auth.Clients = clients

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Postgres.Enabled && c.Postgres.URL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == defaultSecret {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	return nil
}

// parseClients reads "id1:hash1,id2:hash2". Bcrypt hashes contain '$' but
// never ':' or ','.
func parseClients(v string) (map[string]string, error) {
	clients := make(map[string]string)
	if strings.TrimSpace(v) == "" {
		return clients, nil
	}
	for _, item := range strings.Split(v, ",") {
		id, hash, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("AUTH_CLIENTS: malformed entry %q (want id:bcrypt-hash)", item)
		}
		clients[id] = hash
	}
	return clients, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
