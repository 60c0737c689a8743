package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Features FeatureFlagsConfig
	Booking  BookingConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Stripe   StripeConfig
	Line     LineConfig
	Sendgrid SendgridConfig
	Outbox   OutboxConfig
	Cron     CronConfig
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
	Env          string `envconfig:"HOMESERVICE_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMESERVICE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOMESERVICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMESERVICE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"HOMESERVICE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HOMESERVICE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HOMESERVICE_DB_DSN"`
	Driver string `envconfig:"HOMESERVICE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOMESERVICE_DB_HOST"`
	LegacyPort     int    `envconfig:"HOMESERVICE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOMESERVICE_DB_USER"`
	LegacyPassword string `envconfig:"HOMESERVICE_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOMESERVICE_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOMESERVICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOMESERVICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOMESERVICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOMESERVICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOMESERVICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMESERVICE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOMESERVICE_REDIS_ADDR"`
	Password     string        `envconfig:"HOMESERVICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMESERVICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMESERVICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMESERVICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMESERVICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMESERVICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMESERVICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HOMESERVICE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HOMESERVICE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HOMESERVICE_JWT_EXPIRATION_MINUTES" default:"720"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HOMESERVICE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HOMESERVICE_AUTO_MIGRATE" default:"false"`
}

// BookingConfig carries the booking-flow knobs that are not per-organization.
type BookingConfig struct {
	DraftTTL              time.Duration `envconfig:"HOMESERVICE_BOOKING_DRAFT_TTL" default:"24h"`
	ReminderLeadHours     int           `envconfig:"HOMESERVICE_BOOKING_REMINDER_LEAD_HOURS" default:"24"`
	DefaultCheckoutExpiry int           `envconfig:"HOMESERVICE_BOOKING_CHECKOUT_EXPIRY_HOURS" default:"24"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HOMESERVICE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"HOMESERVICE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HOMESERVICE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingTopic             string `envconfig:"HOMESERVICE_PUBSUB_BOOKING_TOPIC" default:"hs-booking-events"`
	BookingSubscription      string `envconfig:"HOMESERVICE_PUBSUB_BOOKING_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"HOMESERVICE_PUBSUB_NOTIFICATION_TOPIC" default:"hs-notification-events"`
	NotificationSubscription string `envconfig:"HOMESERVICE_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HOMESERVICE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HOMESERVICE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HOMESERVICE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"HOMESERVICE_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"HOMESERVICE_CRON_LOCK_TTL" default:"10m"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"HOMESERVICE_STRIPE_API_KEY"`
	Secret     string `envconfig:"HOMESERVICE_STRIPE_SECRET"`
	Env        string `envconfig:"HOMESERVICE_STRIPE_ENV" default:"test"`
	SuccessURL string `envconfig:"HOMESERVICE_STRIPE_SUCCESS_URL"`
	CancelURL  string `envconfig:"HOMESERVICE_STRIPE_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// LineConfig holds platform-level LINE Messaging API settings. Channel
// credentials are per-organization; only the API endpoint is global.
type LineConfig struct {
	APIBaseURL string `envconfig:"HOMESERVICE_LINE_API_BASE_URL" default:"https://api.line.me"`
	Timeout    time.Duration `envconfig:"HOMESERVICE_LINE_TIMEOUT" default:"10s"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"HOMESERVICE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"HOMESERVICE_SENDGRID_FROM_EMAIL"`
	BaseURL     string `envconfig:"HOMESERVICE_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
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
