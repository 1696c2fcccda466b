package config

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config is the global configuration tree, loaded once at boot.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Bumper   BumperConfig   `mapstructure:"bumper"`
	DVLA     DVLAConfig     `mapstructure:"dvla"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	Warranty WarrantyConfig `mapstructure:"warranty"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // hours
}

type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	BaseURL string `mapstructure:"base_url"` // public site URL, used for checkout redirects
}

// StripeConfig carries the card-checkout provider credentials.
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessPath   string `mapstructure:"success_path"`
	CancelPath    string `mapstructure:"cancel_path"`
}

// BumperConfig carries the pay-later provider credentials. Both keys
// must be present for the provider to be usable; otherwise checkout
// falls back to Stripe.
type BumperConfig struct {
	APIKey      string `mapstructure:"api_key"`
	SecretKey   string `mapstructure:"secret_key"`
	BaseURL     string `mapstructure:"base_url"`
	SuccessPath string `mapstructure:"success_path"`
	FailurePath string `mapstructure:"failure_path"`
}

type DVLAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type SendGridConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

// WarrantyConfig points at the legacy warranty-administration API.
type WarrantyConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

var GlobalConfig Config

// Validate checks the parts of the configuration the service cannot
// run without. Provider credentials are intentionally not required
// here: missing Bumper keys degrade to card-only checkout.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Stripe.SecretKey == "" {
		return errors.New("stripe secret key is required")
	}

	return nil
}

// LoadConfig reads configs/config[.env].yaml, applies defaults and
// environment overrides, and validates the result.
func LoadConfig() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.base_url", "http://localhost:8080")
	viper.SetDefault("stripe.success_path", "/checkout/success")
	viper.SetDefault("stripe.cancel_path", "/checkout/cancel")
	viper.SetDefault("bumper.base_url", "https://api.bumper.co")
	viper.SetDefault("bumper.success_path", "/checkout/success")
	viper.SetDefault("bumper.failure_path", "/checkout/cancel")
	viper.SetDefault("dvla.base_url", "https://driver-vehicle-licensing.api.gov.uk/vehicle-enquiry/v1")
	viper.SetDefault("sendgrid.from_email", "hello@warrantyshop.co.uk")
	viper.SetDefault("sendgrid.from_name", "Warranty Shop")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// Manual overrides for secrets that are normally injected through
	// the environment rather than the yaml file.
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		GlobalConfig.Stripe.SecretKey = key
	}
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		GlobalConfig.Stripe.WebhookSecret = secret
	}
	if key := os.Getenv("BUMPER_API_KEY"); key != "" {
		GlobalConfig.Bumper.APIKey = key
	}
	if secret := os.Getenv("BUMPER_SECRET_KEY"); secret != "" {
		GlobalConfig.Bumper.SecretKey = secret
	}
	if key := os.Getenv("DVLA_API_KEY"); key != "" {
		GlobalConfig.DVLA.APIKey = key
	}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		GlobalConfig.SendGrid.APIKey = key
	}
	if user := os.Getenv("WARRANTY_API_USERNAME"); user != "" {
		GlobalConfig.Warranty.Username = user
	}
	if pass := os.Getenv("WARRANTY_API_PASSWORD"); pass != "" {
		GlobalConfig.Warranty.Password = pass
	}

	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
