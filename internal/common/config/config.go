package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"

	GatewayMemory = "memory"
	GatewayHTTP   = "http"

	ReregisterReject = "reject"
	ReregisterIgnore = "ignore"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"quad-backend"`

	Server struct {
		Port            int           `env:"PORT" envDefault:"8080"`
		Origin          string        `env:"ORIGIN" envDefault:"http://localhost:3000"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	// Store selects the account store backend: redis or memory.
	Store string `env:"STORE" envDefault:"redis"`

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		Prefix   string `env:"REDIS_KEY_PREFIX" envDefault:"quad"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		// AdminIDs may read the journal and run audits.
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
	}

	Token struct {
		Gateway        string        `env:"TOKEN_GATEWAY" envDefault:"memory"`
		GatewayURL     string        `env:"TOKEN_GATEWAY_URL"`
		GatewayToken   string        `env:"TOKEN_GATEWAY_TOKEN"`
		GatewayTimeout time.Duration `env:"TOKEN_GATEWAY_TIMEOUT" envDefault:"10s"`
		CustodyAddress string        `env:"TOKEN_CUSTODY_ADDRESS,notEmpty"`
		// Dev mint for the in-process token, "address=amount" pairs.
		DevMint []string `env:"TOKEN_DEV_MINT" envSeparator:","`
	}

	Ledger struct {
		ReregisterPolicy string        `env:"REREGISTER_POLICY" envDefault:"reject"`
		LockTimeout      time.Duration `env:"LEDGER_LOCK_TIMEOUT" envDefault:"5s"`
		LockTTL          time.Duration `env:"LEDGER_LOCK_TTL" envDefault:"30s"`
		JournalMaxLen    int64         `env:"JOURNAL_MAX_LEN" envDefault:"10000"`
		AuditInterval    time.Duration `env:"AUDIT_INTERVAL" envDefault:"1m"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
	}

	TonProof struct {
		Domain     string        `env:"TON_PROOF_DOMAIN" envDefault:"localhost"`
		TTL        time.Duration `env:"TON_PROOF_TTL" envDefault:"5m"`
		PayloadTTL time.Duration `env:"TON_PROOF_PAYLOAD_TTL" envDefault:"15m"`
	}
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine: production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE %q: want %s or %s", c.Store, StoreRedis, StoreMemory)
	}
	switch c.Token.Gateway {
	case GatewayMemory:
	case GatewayHTTP:
		if c.Token.GatewayURL == "" {
			return fmt.Errorf("TOKEN_GATEWAY_URL is required for the http gateway")
		}
	default:
		return fmt.Errorf("invalid TOKEN_GATEWAY %q", c.Token.Gateway)
	}
	switch c.Ledger.ReregisterPolicy {
	case ReregisterReject, ReregisterIgnore:
	default:
		return fmt.Errorf("invalid REREGISTER_POLICY %q", c.Ledger.ReregisterPolicy)
	}
	if !c.Debug && c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required outside debug mode")
	}
	return nil
}

// RedisAddr returns host:port.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
