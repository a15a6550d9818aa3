package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type App struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Env         string `envconfig:"APP_ENV"`
	NodeEnv     string `envconfig:"NODE_ENV"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// Identity provider
	SupabaseURL            string `envconfig:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret      string `envconfig:"SUPABASE_JWT_SECRET"`

	// Payments
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Notifications
	GHLWebhookURL     string `envconfig:"GHL_WEBHOOK_URL"`
	TwilioAccountSID  string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `envconfig:"TWILIO_PHONE_NUMBER"`
	TwilioNotifyTo    string `envconfig:"TWILIO_NOTIFY_TO"`
	AMQPURL           string `envconfig:"AMQP_URL"`
	AMQPExchange      string `envconfig:"AMQP_EXCHANGE" default:"booking.events"`

	// Tracing
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"property-booking-backend"`
}

// Load reads .env when present and then the process environment.
func Load() (App, error) {
	_ = godotenv.Load()

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if c.Env == "" {
		c.Env = c.NodeEnv
	}
	if c.Env == "" {
		c.Env = EnvProduction
	}
	return c, nil
}

// Development is true only when the environment is explicitly development.
func (c App) Development() bool { return c.Env == EnvDevelopment }

func (c App) StripeEnabled() bool { return c.StripeSecretKey != "" }

func (c App) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != "" && c.TwilioNotifyTo != ""
}
