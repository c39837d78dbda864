package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminPIN     string
	SessionSalt  string
	AddressSalt  string

	MaxVotesPerNetwork  int
	StartOpen           bool
	DisableDeviceCheck  bool
	DisableNetworkLimit bool

	RateLimit    int
	RateWindow   time.Duration
	QueryTimeout time.Duration
	TrustProxy   bool
}

// Defaults
const (
	DefaultPort               = 3001
	DefaultDatabaseURL        = "votes.db"
	DefaultMaxVotesPerNetwork = 3
	DefaultRateLimit          = 100
	DefaultRateWindow         = time.Minute
	DefaultQueryTimeout       = 5 * time.Second
)

// ParseFlags parses flags, falls back to environment variables (optionally
// loaded from an env file) and validates the result
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("votegate", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", true, "Trust X-Forwarded-For / X-Real-IP")
	fs.StringVar(&envFile, "env-file", ".env", "Env file to load if present")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminPIN, "admin-pin", "", "Admin PIN (prefer env)")
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Admin session signing salt (prefer env)")
	fs.StringVar(&cfg.AddressSalt, "address-salt", "", "Hash client addresses with this salt (prefer env)")

	// Admission policy
	fs.IntVar(&cfg.MaxVotesPerNetwork, "max-per-network", 0, "Initial max voters per network per category")
	fs.BoolVar(&cfg.StartOpen, "open", false, "Start with voting open")
	fs.BoolVar(&cfg.DisableDeviceCheck, "no-device-check", false, "Disable the same-device check")
	fs.BoolVar(&cfg.DisableNetworkLimit, "no-network-limit", false, "Disable the per-network voter limit")

	// Limits
	fs.IntVar(&cfg.RateLimit, "rate-limit", 0, "Max vote requests per address per window")
	fs.DurationVar(&cfg.RateWindow, "rate-window", 0, "Rate limit window")
	fs.DurationVar(&cfg.QueryTimeout, "query-timeout", 0, "Ledger query timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		// Load never overrides variables that are already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", DefaultPort); err != nil {
			return Config{}, err
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = envString("DATABASE_URL", DefaultDatabaseURL)
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.AdminPIN == "" {
		cfg.AdminPIN = os.Getenv("ADMIN_PIN")
	}
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("ADMIN_SESSION_SALT")
	}
	if cfg.AddressSalt == "" {
		cfg.AddressSalt = os.Getenv("ADDRESS_SALT")
	}
	if cfg.MaxVotesPerNetwork == 0 {
		if cfg.MaxVotesPerNetwork, err = envInt("MAX_VOTES_PER_NETWORK", DefaultMaxVotesPerNetwork); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateLimit == 0 {
		if cfg.RateLimit, err = envInt("RATE_LIMIT", DefaultRateLimit); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateWindow == 0 {
		if cfg.RateWindow, err = envDuration("RATE_WINDOW", DefaultRateWindow); err != nil {
			return Config{}, err
		}
	}
	if cfg.QueryTimeout == 0 {
		if cfg.QueryTimeout, err = envDuration("QUERY_TIMEOUT", DefaultQueryTimeout); err != nil {
			return Config{}, err
		}
	}

	bools := []struct {
		flag, env string
		dst       *bool
	}{
		{"trust-proxy", "TRUST_PROXY", &cfg.TrustProxy},
		{"open", "SYSTEM_OPEN", &cfg.StartOpen},
		{"no-device-check", "DISABLE_DEVICE_CHECK", &cfg.DisableDeviceCheck},
		{"no-network-limit", "DISABLE_NETWORK_LIMIT", &cfg.DisableNetworkLimit},
	}
	for _, b := range bools {
		if set[b.flag] {
			continue
		}
		if *b.dst, err = envBool(b.env, *b.dst); err != nil {
			return Config{}, err
		}
	}

	// Validation
	if cfg.MaxVotesPerNetwork < 1 {
		return Config{}, errors.New("max votes per network must be at least 1")
	}
	if cfg.RateLimit < 0 {
		return Config{}, errors.New("rate limit must not be negative")
	}
	if cfg.RateWindow <= 0 || cfg.QueryTimeout <= 0 {
		return Config{}, errors.New("rate window and query timeout must be positive")
	}

	// Secrets - MUST be provided
	if cfg.AdminPIN == "" {
		return Config{}, errors.New("ADMIN_PIN required")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("ADMIN_SESSION_SALT required")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
