package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config carries all runtime configuration. Every external collaborator is
// configured here so main can fail fast instead of degrading silently.
type Config struct {
	Addr       string
	Production bool
	LogLevel   string

	PostgresDSN string
	RedisURL    string

	JWTSigningKey string
	AdminToken    string
	TokenTTL      time.Duration
	OTPTTL        time.Duration

	SMTP SMTPConfig
	SMS  SMSConfig

	ObjectStore ObjectStoreConfig

	KafkaBrokers []string
	KafkaTopic   string

	// CorporateDomain, when set, restricts employer registration to emails
	// under that domain.
	CorporateDomain string

	MaxDocumentBytes int64
	MaxMediaBytes    int64
}

// SMTPConfig configures the transactional mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMSConfig configures the SMS provider webhook client.
type SMSConfig struct {
	ProviderURL string
	APIKey      string
	Sender      string
}

// ObjectStoreConfig configures the S3-compatible file store.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// FromEnv builds a Config from environment variables. All required settings
// are validated together so one startup failure lists everything missing.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:             envOr("STAFFLINK_ADDR", ":8080"),
		Production:       os.Getenv("STAFFLINK_ENV") == "production",
		LogLevel:         envOr("LOG_LEVEL", "info"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		TokenTTL:         24 * time.Hour,
		OTPTTL:           5 * time.Minute,
		CorporateDomain:  strings.ToLower(os.Getenv("CORPORATE_EMAIL_DOMAIN")),
		KafkaTopic:       envOr("KAFKA_EVENTS_TOPIC", "stafflink.workflow-events"),
		MaxDocumentBytes: 5 << 20,
		MaxMediaBytes:    50 << 20,
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     envIntOr("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     envOr("SMTP_FROM", "no-reply@stafflink.io"),
	}
	cfg.SMS = SMSConfig{
		ProviderURL: os.Getenv("SMS_PROVIDER_URL"),
		APIKey:      os.Getenv("SMS_API_KEY"),
		Sender:      envOr("SMS_SENDER", "StaffLink"),
	}
	cfg.ObjectStore = ObjectStoreConfig{
		Endpoint:  os.Getenv("OBJECT_STORE_ENDPOINT"),
		AccessKey: os.Getenv("OBJECT_STORE_ACCESS_KEY"),
		SecretKey: os.Getenv("OBJECT_STORE_SECRET_KEY"),
		Bucket:    envOr("OBJECT_STORE_BUCKET", "stafflink-uploads"),
		UseSSL:    os.Getenv("OBJECT_STORE_USE_SSL") == "true",
		PublicURL: os.Getenv("OBJECT_STORE_PUBLIC_URL"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	var missing []string
	for name, value := range map[string]string{
		"POSTGRES_DSN":            cfg.PostgresDSN,
		"REDIS_URL":               cfg.RedisURL,
		"JWT_SIGNING_KEY":         cfg.JWTSigningKey,
		"ADMIN_TOKEN":             cfg.AdminToken,
		"SMTP_HOST":               cfg.SMTP.Host,
		"SMTP_USERNAME":           cfg.SMTP.Username,
		"SMTP_PASSWORD":           cfg.SMTP.Password,
		"SMS_PROVIDER_URL":        cfg.SMS.ProviderURL,
		"SMS_API_KEY":             cfg.SMS.APIKey,
		"OBJECT_STORE_ENDPOINT":   cfg.ObjectStore.Endpoint,
		"OBJECT_STORE_ACCESS_KEY": cfg.ObjectStore.AccessKey,
		"OBJECT_STORE_SECRET_KEY": cfg.ObjectStore.SecretKey,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
