package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	DatabaseKey    string
	AdminKey       string
	AllowedOrigins []string
	RedisURL       string
	DayUTCOffset   int
	RoundQuota     int
	VoteRateLimit  float64
	TrustedProxies []netip.Prefix
}

// ParseFlags loads .env, then flags, then environment variables.
// Flags take precedence over the environment.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	var origins, proxies string

	fs := flag.NewFlagSet("trend-off", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (postgres or sqlite)")
	fs.StringVar(&origins, "origins", "", "Comma-separated allowed CORS origins")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the leaderboard cache")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set X-Forwarded-For")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.DatabaseKey, "db-key", "", "Database access key (prefer env)")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin key (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := intEnv("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabasePostgres
		}
	}
	if cfg.DatabaseType != DatabasePostgres && cfg.DatabaseType != DatabaseSQLite {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseKey == "" {
		cfg.DatabaseKey = os.Getenv("DATABASE_KEY")
	}
	if cfg.DatabaseKey != "" && cfg.DatabaseType == DatabasePostgres {
		withKey, err := injectPassword(cfg.DatabaseURL, cfg.DatabaseKey)
		if err != nil {
			return Config{}, err
		}
		cfg.DatabaseURL = withKey
	}

	// Secrets - MUST be provided
	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	cfg.AllowedOrigins = splitList(origins)

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	trusted, err := parsePrefixes(splitList(proxies))
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = trusted

	offset, err := intEnv("DAY_UTC_OFFSET", -8)
	if err != nil {
		return Config{}, err
	}
	if offset < -12 || offset > 14 {
		return Config{}, errors.New("DAY_UTC_OFFSET must be between -12 and 14")
	}
	cfg.DayUTCOffset = offset

	quota, err := intEnv("ROUND_QUOTA", 3)
	if err != nil {
		return Config{}, err
	}
	if quota < 1 {
		return Config{}, errors.New("ROUND_QUOTA must be positive")
	}
	cfg.RoundQuota = quota

	cfg.VoteRateLimit = 5
	if s := os.Getenv("VOTE_RATE_LIMIT"); s != "" {
		limit, err := strconv.ParseFloat(s, 64)
		if err != nil || limit <= 0 {
			return Config{}, errors.New("invalid VOTE_RATE_LIMIT env variable")
		}
		cfg.VoteRateLimit = limit
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", name)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePrefixes accepts bare addresses as single-host prefixes.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range items {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", item)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", item)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// injectPassword sets the password of a postgres:// URL, keeping the user.
func injectPassword(rawURL, key string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "", errors.New("DATABASE_KEY requires DATABASE_URL in URL form")
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, key)
	return u.String(), nil
}
