package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Storage driver selection.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Session       SessionConfig
	Password      PasswordConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KOLSCH_APP_ENV" default:"dev"`
	Port         string `envconfig:"KOLSCH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KOLSCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KOLSCH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver selects the storage backend: "memory" or "postgres".
	Driver string `envconfig:"KOLSCH_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"KOLSCH_DB_DSN"`

	Host     string `envconfig:"KOLSCH_DB_HOST"`
	Port     int    `envconfig:"KOLSCH_DB_PORT" default:"5432"`
	User     string `envconfig:"KOLSCH_DB_USER"`
	Password string `envconfig:"KOLSCH_DB_PASSWORD"`
	Name     string `envconfig:"KOLSCH_DB_NAME"`
	SSLMode  string `envconfig:"KOLSCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KOLSCH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KOLSCH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KOLSCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KOLSCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// CascadeDelete controls whether deleting a brewery removes its owned
	// rows. When false, deletion is refused while children exist.
	CascadeDelete bool `envconfig:"KOLSCH_DB_CASCADE_DELETE" default:"false"`
}

func (d *DBConfig) validate() error {
	switch d.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
		if d.DSN == "" {
			if d.Host == "" || d.User == "" || d.Name == "" {
				return fmt.Errorf("either KOLSCH_DB_DSN or KOLSCH_DB_HOST/USER/NAME must be set for the postgres driver")
			}
			d.DSN = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
			)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", d.Driver)
	}
}

type SessionConfig struct {
	CookieName    string        `envconfig:"KOLSCH_SESSION_COOKIE_NAME" default:"kolsch_sid"`
	TTL           time.Duration `envconfig:"KOLSCH_SESSION_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"KOLSCH_SESSION_SWEEP_INTERVAL" default:"10m"`
	CookieSecure  bool          `envconfig:"KOLSCH_SESSION_COOKIE_SECURE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KOLSCH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KOLSCH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KOLSCH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KOLSCH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KOLSCH_ARGON_KEY_LEN" default:"32"`
}

type RedisConfig struct {
	// URL is optional; login rate limiting is disabled when empty.
	URL          string        `envconfig:"KOLSCH_REDIS_URL"`
	PoolSize     int           `envconfig:"KOLSCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KOLSCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KOLSCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KOLSCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KOLSCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KOLSCH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"KOLSCH_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KOLSCH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow       time.Duration `envconfig:"KOLSCH_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupIPLimit      int           `envconfig:"KOLSCH_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KOLSCH_FF_AUTO_MIGRATE" default:"true"`
	SeedDemo    bool `envconfig:"KOLSCH_FF_SEED_DEMO" default:"false"`
}
