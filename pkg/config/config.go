package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "KITCHEN"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv                 = "KITCHEN_APP_ENV"
	EnvPort                   = "KITCHEN_APP_PORT"
	EnvLogLevel               = "KITCHEN_LOG_LEVEL"
	EnvLogFormat              = "KITCHEN_LOG_FORMAT"
	EnvDBDSN                  = "KITCHEN_DB_DSN"
	EnvDBDriver               = "KITCHEN_DB_DRIVER"
	EnvDBHost                 = "KITCHEN_DB_HOST"
	EnvDBUser                 = "KITCHEN_DB_USER"
	EnvDBName                 = "KITCHEN_DB_NAME"
	EnvDBPassword             = "KITCHEN_DB_PASSWORD"
	EnvRedisURL               = "KITCHEN_REDIS_URL"
	EnvJWTSecret              = "KITCHEN_JWT_SECRET"
	EnvJWTIssuer              = "KITCHEN_JWT_ISSUER"
	EnvJWTExpMins             = "KITCHEN_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite              = "KITCHEN_USE_SQLITE"
	EnvAutoMigrate            = "KITCHEN_AUTO_MIGRATE"
	EnvEquipmentSerialScope   = "KITCHEN_EQUIPMENT_SERIAL_SCOPE"
	EnvOTLPEndpoint           = "KITCHEN_OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvCORSAllowedOrigins     = "KITCHEN_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Equipment     EquipmentConfig
	Tracing       TracingConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = defaultSQLiteDSN
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Equipment.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const defaultSQLiteDSN = "file:kitchen.db?_busy_timeout=5000"

type AppConfig struct {
	Env          string `envconfig:"KITCHEN_APP_ENV" required:"true"`
	Port         string `envconfig:"KITCHEN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KITCHEN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"KITCHEN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"KITCHEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KITCHEN_DB_DSN"`
	Driver string `envconfig:"KITCHEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KITCHEN_DB_HOST"`
	LegacyPort     int    `envconfig:"KITCHEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KITCHEN_DB_USER"`
	LegacyPassword string `envconfig:"KITCHEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"KITCHEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"KITCHEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KITCHEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KITCHEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KITCHEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KITCHEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

// RedisConfig configures the rate limiter backend. An empty URL disables
// rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"KITCHEN_REDIS_URL"`
	Address      string        `envconfig:"KITCHEN_REDIS_ADDR"`
	Password     string        `envconfig:"KITCHEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"KITCHEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KITCHEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KITCHEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KITCHEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KITCHEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KITCHEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"KITCHEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KITCHEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KITCHEN_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"KITCHEN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginAccountLimit int           `envconfig:"KITCHEN_AUTH_RATE_LIMIT_LOGIN_ACCOUNT_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"KITCHEN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow      time.Duration `envconfig:"KITCHEN_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit  int           `envconfig:"KITCHEN_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit     int           `envconfig:"KITCHEN_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KITCHEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KITCHEN_AUTO_MIGRATE" default:"false"`
}

// EquipmentConfig holds equipment business-rule switches.
type EquipmentConfig struct {
	// SerialScope is "owner" (serial unique per owner) or "global".
	SerialScope string `envconfig:"KITCHEN_EQUIPMENT_SERIAL_SCOPE" default:"owner"`
}

func (e EquipmentConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.SerialScope)) {
	case "", "owner", "global":
		return nil
	default:
		return fmt.Errorf("%s must be owner or global, got %q", EnvEquipmentSerialScope, e.SerialScope)
	}
}

type TracingConfig struct {
	OTLPEndpoint string `envconfig:"KITCHEN_OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"KITCHEN_OTEL_SERVICE_NAME" default:"kitchen-equipment-api"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"KITCHEN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
