package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Classifier   ClassifierConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"SMARTKUBIK_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTKUBIK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMARTKUBIK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTKUBIK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SMARTKUBIK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SMARTKUBIK_DB_DSN"`
	Driver string `envconfig:"SMARTKUBIK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SMARTKUBIK_DB_HOST"`
	LegacyPort     int    `envconfig:"SMARTKUBIK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMARTKUBIK_DB_USER"`
	LegacyPassword string `envconfig:"SMARTKUBIK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMARTKUBIK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMARTKUBIK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTKUBIK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTKUBIK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTKUBIK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTKUBIK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTKUBIK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SMARTKUBIK_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTKUBIK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTKUBIK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTKUBIK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTKUBIK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTKUBIK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTKUBIK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTKUBIK_REDIS_WRITE_TIMEOUT" default:"5s"`
	ProjectionTTL time.Duration `envconfig:"SMARTKUBIK_REDIS_PROJECTION_TTL" default:"5m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTKUBIK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTKUBIK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SMARTKUBIK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SMARTKUBIK_AUTO_MIGRATE" default:"false"`
}

// ClassifierConfig controls the payment-method classifier fallback. The
// shipped default mirrors the market the product launched in, where an
// unrecognized instrument is priced against the volatile parallel dollar.
type ClassifierConfig struct {
	DefaultRegime   string `envconfig:"SMARTKUBIK_CLASSIFIER_DEFAULT_REGIME" default:"USD_VOLATILE"`
	DefaultVolatile bool   `envconfig:"SMARTKUBIK_CLASSIFIER_DEFAULT_VOLATILE" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SMARTKUBIK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SMARTKUBIK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SMARTKUBIK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SupplierTopic        string `envconfig:"SMARTKUBIK_PUBSUB_SUPPLIER_TOPIC" default:"sk-supplier-events"`
	SupplierSubscription string `envconfig:"SMARTKUBIK_PUBSUB_SUPPLIER_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SMARTKUBIK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SMARTKUBIK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SMARTKUBIK_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
