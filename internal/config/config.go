// Package config assembles runtime configuration from the environment.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/unw4/TrustChain/pkg/logger"
)

// Config holds everything the service needs to start.
type Config struct {
	Server  ServerConfig
	Sui     SuiConfig
	Store   StoreConfig
	Logging logger.LoggingConfig

	// AllowedOrigin restricts browser origins on the websocket endpoint.
	// "*" accepts any origin.
	AllowedOrigin string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       int
	RateBurst       int
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SuiConfig configures the ledger gateway.
type SuiConfig struct {
	Network    string
	RPCURL     string
	PrivateKey string
	PackageID  string
	GasBudget  uint64
}

// StoreConfig selects the simulation job store backend. DatabaseURL wins
// over RedisAddr; with neither set, jobs live in memory only.
type StoreConfig struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment and validates the parts
// the service cannot run without.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 3001),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimit:       getEnvInt("SERVER_RATE_LIMIT", 50),
			RateBurst:       getEnvInt("SERVER_RATE_BURST", 100),
		},
		Sui: SuiConfig{
			Network:    getEnv("SUI_NETWORK", "testnet"),
			RPCURL:     os.Getenv("SUI_RPC_URL"),
			PrivateKey: os.Getenv("SUI_PRIVATE_KEY"),
			PackageID:  os.Getenv("SUI_PACKAGE_ID"),
			GasBudget:  uint64(getEnvInt("SUI_GAS_BUDGET", 0)),
		},
		Store: StoreConfig{
			DatabaseURL:   os.Getenv("DATABASE_URL"),
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: logger.LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: outputWriter(getEnv("LOG_OUTPUT", "stdout")),
		},
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sui.PrivateKey == "" {
		return fmt.Errorf("SUI_PRIVATE_KEY is required")
	}
	if c.Sui.PackageID == "" {
		return fmt.Errorf("SUI_PACKAGE_ID is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Sui.Network {
	case "devnet", "dev", "testnet", "test", "mainnet", "main":
	default:
		if c.Sui.RPCURL == "" {
			return fmt.Errorf("unknown network %q and no SUI_RPC_URL override", c.Sui.Network)
		}
	}
	return nil
}

func outputWriter(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
