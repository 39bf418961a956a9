package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string
	QueueKey    string

	TokenSecret   string // signs certificate verification tokens
	VerifyBaseURL string // base URL embedded in QR verification links
	DocumentDir   string // where rendered certificate PDFs are stored

	BrevoAPIKey string // transactional email API key; empty disables email
	MailFrom    string
	MailSender  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMSGatewayURL    string // fallback SMS webhook gateway
	SMSGatewayToken  string
	SMSEnabled       bool

	WorkerMaxAttempts int
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	documentDir := viper.GetString("CERTIFICATE_DOCUMENT_DIR")
	if documentDir == "" {
		documentDir = "data/certificates"
	}

	maxAttempts := viper.GetInt("WORKER_MAX_ATTEMPTS")
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	cfg := &Config{
		Env:               env,
		Port:              port,
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		RedisURL:          viper.GetString("REDIS_URL"),
		QueueKey:          viper.GetString("JOB_QUEUE_KEY"),
		TokenSecret:       viper.GetString("CERTIFICATE_TOKEN_SECRET"),
		VerifyBaseURL:     verifyBaseURL(viper.GetString("CERTIFICATE_VERIFY_BASE_URL")),
		DocumentDir:       documentDir,
		BrevoAPIKey:       viper.GetString("BREVO_API_KEY"),
		MailFrom:          viper.GetString("MAIL_FROM"),
		MailSender:        viper.GetString("MAIL_SENDER_NAME"),
		TwilioAccountSID:  viper.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   viper.GetString("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  viper.GetString("TWILIO_FROM_NUMBER"),
		SMSGatewayURL:     viper.GetString("CERTIFICATE_SMS_GATEWAY_URL"),
		SMSGatewayToken:   viper.GetString("CERTIFICATE_SMS_GATEWAY_TOKEN"),
		WorkerMaxAttempts: maxAttempts,
	}

	// SMS is on when explicitly enabled, otherwise when a transport is
	// configured.
	if viper.IsSet("CERTIFICATE_NOTIFICATION_ENABLE_SMS") {
		cfg.SMSEnabled = viper.GetBool("CERTIFICATE_NOTIFICATION_ENABLE_SMS")
	} else {
		twilioReady := cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != ""
		cfg.SMSEnabled = twilioReady || cfg.SMSGatewayURL != ""
	}

	return cfg, nil
}

func verifyBaseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "http://localhost:8080"
	}
	return strings.TrimRight(s, "/")
}
