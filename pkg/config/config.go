package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

// Environment names recognized by AppConfig helpers.
const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Env var names referenced by tests and tooling.
const (
	EnvAppEnv                 = "SHOPLITE_APP_ENV"
	EnvPort                   = "SHOPLITE_APP_PORT"
	EnvDBDSN                  = "SHOPLITE_DB_DSN"
	EnvRedisURL               = "SHOPLITE_REDIS_URL"
	EnvJWTSecret              = "SHOPLITE_JWT_SECRET"
	EnvJWTIssuer              = "SHOPLITE_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPLITE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPLITE_REFRESH_TOKEN_TTL_MINUTES"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

// Load reads the full configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// envconfig's required tag accepts set-but-empty variables, so the
	// security-critical strings get a second pass.
	for name, value := range map[string]string{
		EnvAppEnv:    cfg.App.Env,
		EnvPort:      cfg.App.Port,
		EnvRedisURL:  cfg.Redis.URL,
		EnvJWTSecret: cfg.JWT.Secret,
		EnvJWTIssuer: cfg.JWT.Issuer,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("config: %s must not be empty", name)
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPLITE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLITE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLITE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLITE_DB_DSN"`
	Driver string `envconfig:"SHOPLITE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPLITE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPLITE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPLITE_DB_USER"`
	LegacyPassword string `envconfig:"SHOPLITE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPLITE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPLITE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPLITE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLITE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLITE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLITE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the legacy host/user fields when no
// DSN was supplied directly. The sqlite driver treats DSN as a file path and
// skips assembly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" || strings.EqualFold(d.Driver, "sqlite") {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database config requires SHOPLITE_DB_DSN or host/user/name")
	}
	userInfo := url.UserPassword(d.LegacyUser, d.LegacyPassword)
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:     d.LegacyName,
		RawQuery: fmt.Sprintf("sslmode=%s", d.LegacySSLMode),
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLITE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPLITE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLITE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLITE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLITE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPLITE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPLITE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPLITE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPLITE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPLITE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPLITE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPLITE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPLITE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPLITE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SHOPLITE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SHOPLITE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SHOPLITE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPLITE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SHOPLITE_GCP_PROJECT_ID"`
}

// PubSubConfig names the optional audit fan-out topic. When AuditTopic is
// empty, audit entries are written to the database only.
type PubSubConfig struct {
	AuditTopic string `envconfig:"SHOPLITE_PUBSUB_AUDIT_TOPIC"`
}
