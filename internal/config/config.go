package config

import (
	"log"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host" env:"SERVER_HOST"`
		Port int    `yaml:"port" env:"SERVER_PORT" envDefault:"4000"`
		Env  string `yaml:"env" env:"SERVER_ENV" envDefault:"development"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET"`
		TTL    int    `yaml:"ttl" env:"JWT_TTL" envDefault:"60"` // minutes
	} `yaml:"jwt"`

	Stripe struct {
		SecretKey         string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
		WebhookSecret     string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
		PriceIDProMonthly string `yaml:"price_id_pro_monthly" env:"STRIPE_PRICE_ID_PRO_MONTHLY"`
		FrontendURL       string `yaml:"frontend_url" env:"STRIPE_FRONTEND_URL"`
	} `yaml:"stripe"`

	Email EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	FromName     string `yaml:"from_name" env:"SMTP_FROM_NAME"`
}

var AppConfig *Config

// LoadConfig reads config.yaml unless DATABASE_URL is set, in which case the
// whole config comes from environment variables (the mode tests and container
// deployments use).
func LoadConfig() {
	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		AppConfig = &cfg
		return
	}

	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse config from environment: %v", err)
	}

	AppConfig = &cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
