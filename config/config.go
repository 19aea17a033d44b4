// Package config loads service configuration and builds shared infrastructure.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ReceiptDeliveryEmail    = "email"
	ReceiptDeliveryDeferred = "deferred"
)

var devOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

type Config struct {
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	Port           string   `env:"PORT" envDefault:"8080"`
	DatabaseURL    string   `env:"DB_URL,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	Timezone       string   `env:"APP_TIMEZONE" envDefault:"America/Lima"`

	Auth     AuthConfig
	Registry RegistryConfig
	SMTP     SMTPConfig
	Firebase FirebaseConfig
	Twilio   TwilioConfig
	Receipts ReceiptConfig
	Outbox   OutboxConfig
	Seed     SeedConfig

	RedisURL string `env:"REDIS_URL"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"48h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"2880h"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`
}

type RegistryConfig struct {
	URL   string `env:"REGISTRY_API_URL"`
	Token string `env:"REGISTRY_TOKEN"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c SMTPConfig) Enabled() bool { return c.User != "" && c.Password != "" }

type FirebaseConfig struct {
	ProjectID         string `env:"FIREBASE_PROJECT_ID"`
	CredentialsBase64 string `env:"FIREBASE_CREDENTIALS_BASE64"`
	CredentialsFile   string `env:"FIREBASE_CREDENTIALS_FILE"`
}

func (c FirebaseConfig) Enabled() bool {
	return c.ProjectID != "" && (c.CredentialsBase64 != "" || c.CredentialsFile != "")
}

type TwilioConfig struct {
	AccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	PhoneNumber string `env:"TWILIO_PHONE_NUMBER"`

	// Optional; when set, messages go out over WhatsApp instead of SMS.
	WhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

type ReceiptConfig struct {
	Delivery      string `env:"RECEIPT_DELIVERY" envDefault:"email"`
	LogoPath      string `env:"RECEIPT_LOGO_PATH" envDefault:"assets/images/logo.png"`
	PubSubProject string `env:"PUBSUB_PROJECT_ID"`
	PubSubTopic   string `env:"PUBSUB_RECEIPT_TOPIC" envDefault:"order-receipts"`
}

type OutboxConfig struct {
	Schedule    string `env:"OUTBOX_SCHEDULE" envDefault:"@every 1m"`
	MaxAttempts int    `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`
}

type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	ShopName      string `env:"SEED_SHOP_NAME" envDefault:"Main Shop"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AppEnv {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv)
	}
	switch c.Receipts.Delivery {
	case ReceiptDeliveryEmail, ReceiptDeliveryDeferred:
	default:
		return fmt.Errorf("RECEIPT_DELIVERY must be %q or %q, got %q",
			ReceiptDeliveryEmail, ReceiptDeliveryDeferred, c.Receipts.Delivery)
	}
	if c.Outbox.MaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == EnvProduction }

// Origins returns the CORS allow-list; development always admits localhost front-ends.
func (c *Config) Origins() []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !seen[o] {
			seen[o] = true
			origins = append(origins, o)
		}
	}
	for _, o := range c.AllowedOrigins {
		add(o)
	}
	if !c.IsProduction() {
		for _, o := range devOrigins {
			add(o)
		}
	}
	return origins
}
