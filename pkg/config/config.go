package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Images       ImagesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WISHBOARD_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHBOARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WISHBOARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WISHBOARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WISHBOARD_DB_DSN"`

	Host     string `envconfig:"WISHBOARD_DB_HOST"`
	Port     int    `envconfig:"WISHBOARD_DB_PORT" default:"5432"`
	User     string `envconfig:"WISHBOARD_DB_USER"`
	Password string `envconfig:"WISHBOARD_DB_PASSWORD"`
	Name     string `envconfig:"WISHBOARD_DB_NAME"`
	SSLMode  string `envconfig:"WISHBOARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WISHBOARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHBOARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHBOARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHBOARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles the connection string from discrete parts when a full
// DSN was not supplied.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either WISHBOARD_DB_DSN or WISHBOARD_DB_HOST/USER/NAME must be set")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"WISHBOARD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WISHBOARD_REDIS_ADDR"`
	Password     string        `envconfig:"WISHBOARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHBOARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHBOARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHBOARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHBOARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHBOARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHBOARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WISHBOARD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WISHBOARD_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WISHBOARD_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WISHBOARD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WISHBOARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WISHBOARD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WISHBOARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WISHBOARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WISHBOARD_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WISHBOARD_AUTO_MIGRATE" default:"false"`
}

type ImagesConfig struct {
	PublicBaseURL string `envconfig:"WISHBOARD_IMAGES_PUBLIC_BASE_URL" default:"/api/v1/images"`
}
