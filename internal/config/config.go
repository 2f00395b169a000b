package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver   string
	SQLitePath string
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs   int
	RateLimitRPS   float64
	RateLimitBurst int

	JWTSecret string
	JWTTTL    time.Duration

	// Ledger settings are checked by the ledger client; missing values only
	// disable anchoring.
	LedgerRPCURL           string
	LedgerPrivateKey       string
	LedgerContractAddress  string
	LedgerConfirmations    uint64
	LedgerGasMarginPercent uint64
	LedgerReceiptPoll      time.Duration

	SyncEnabled       bool
	SyncSchedule      string
	SyncWarmup        time.Duration
	SyncItemDelay     time.Duration
	SyncSubmitTimeout time.Duration
	SyncBatchLimit    int
	SyncStatuses      []string
	SyncLockTTL       time.Duration
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getuint(k string, d uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return d
}

func getfloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}

func getlist(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads the environment. A .env file in the working directory is loaded
// first when present; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   getenv("DB_DRIVER", "mysql"),
		SQLitePath: getenv("SQLITE_PATH", "agriloan.db"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "agriloan"),
		MySQLUser:  getenv("MYSQL_USER", "agriloan"),
		MySQLPass:  getenv("MYSQL_PASS", "agriloan"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:   getint("IDEMPOTENCY_TTL_SECONDS", 300),
		RateLimitRPS:   getfloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getint("RATE_LIMIT_BURST", 40),

		JWTSecret: getenv("JWT_SECRET", ""),
		JWTTTL:    getduration("JWT_TTL", 7*24*time.Hour),

		LedgerRPCURL:           os.Getenv("SEPOLIA_RPC_URL"),
		LedgerPrivateKey:       os.Getenv("PRIVATE_KEY"),
		LedgerContractAddress:  os.Getenv("LEDGER_CONTRACT_ADDRESS"),
		LedgerConfirmations:    getuint("LEDGER_CONFIRMATIONS", 1),
		LedgerGasMarginPercent: getuint("LEDGER_GAS_MARGIN_PERCENT", 20),
		LedgerReceiptPoll:      getduration("LEDGER_RECEIPT_POLL", 2*time.Second),

		SyncEnabled:       getbool("SYNC_ENABLED", true),
		SyncSchedule:      getenv("SYNC_SCHEDULE", "@every 5m"),
		SyncWarmup:        getduration("SYNC_WARMUP", 30*time.Second),
		SyncItemDelay:     getduration("SYNC_ITEM_DELAY", 5*time.Second),
		SyncSubmitTimeout: getduration("SYNC_SUBMIT_TIMEOUT", 3*time.Minute),
		SyncBatchLimit:    getint("SYNC_BATCH_LIMIT", 0),
		SyncStatuses:      getlist("SYNC_STATUSES", []string{"disbursed"}),
		SyncLockTTL:       getduration("SYNC_LOCK_TTL", 30*time.Minute),
	}
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql or sqlite)", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.SyncEnabled {
		if c.SyncSchedule == "" {
			return errors.New("missing SYNC_SCHEDULE")
		}
		if c.SyncItemDelay <= 0 {
			return fmt.Errorf("SYNC_ITEM_DELAY must be positive, got %s", c.SyncItemDelay)
		}
		if c.SyncSubmitTimeout <= 0 {
			return fmt.Errorf("SYNC_SUBMIT_TIMEOUT must be positive, got %s", c.SyncSubmitTimeout)
		}
		if c.SyncLockTTL <= 0 {
			return fmt.Errorf("SYNC_LOCK_TTL must be positive, got %s", c.SyncLockTTL)
		}
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }
