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
	Eventing     EventingConfig
	Billing      BillingConfig
	Catalog      CatalogConfig
	Notify       NotifyConfig
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
	Env          string `envconfig:"PAY2U_APP_ENV" required:"true"`
	Port         string `envconfig:"PAY2U_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PAY2U_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PAY2U_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAY2U_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAY2U_DB_DSN"`
	Driver string `envconfig:"PAY2U_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAY2U_DB_HOST"`
	LegacyPort     int    `envconfig:"PAY2U_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAY2U_DB_USER"`
	LegacyPassword string `envconfig:"PAY2U_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAY2U_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAY2U_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PAY2U_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAY2U_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAY2U_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAY2U_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAY2U_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PAY2U_REDIS_ADDR"`
	Password     string        `envconfig:"PAY2U_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAY2U_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAY2U_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAY2U_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAY2U_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAY2U_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAY2U_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PAY2U_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PAY2U_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PAY2U_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PAY2U_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PAY2U_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PAY2U_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// BillingConfig tunes the payment provider integration and the trial charge.
type BillingConfig struct {
	TrialAmount        int64         `envconfig:"PAY2U_BILLING_TRIAL_AMOUNT" default:"1"`
	ProviderTimeout    time.Duration `envconfig:"PAY2U_BILLING_PROVIDER_TIMEOUT" default:"10s"`
	CashbackMaxPercent int           `envconfig:"PAY2U_BILLING_CASHBACK_MAX_PERCENT" default:"30"`
}

type CatalogConfig struct {
	PopularThreshold int `envconfig:"PAY2U_CATALOG_POPULAR_THRESHOLD" default:"10"`
}

type NotifyConfig struct {
	ExpiryReminderWindow time.Duration `envconfig:"PAY2U_NOTIFY_EXPIRY_REMINDER_WINDOW" default:"72h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PAY2U_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"PAY2U_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PAY2U_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BillingTopic             string `envconfig:"PAY2U_PUBSUB_BILLING_TOPIC" required:"true"`
	BillingSubscription      string `envconfig:"PAY2U_PUBSUB_BILLING_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"PAY2U_PUBSUB_NOTIFICATION_TOPIC" default:"p2u-notification-events"`
	NotificationSubscription string `envconfig:"PAY2U_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PAY2U_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PAY2U_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PAY2U_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
