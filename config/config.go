package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Kiosk identity and authentication.
	KioskID          string `mapstructure:"KIOSK_ID"`
	PreAuthenticated bool   `mapstructure:"PRE_AUTHENTICATED"`

	// Backend unlock/payment service.
	BackendURL     string        `mapstructure:"BACKEND_URL"`
	UnlockTimeout  time.Duration `mapstructure:"UNLOCK_TIMEOUT"`
	PaymentTimeout time.Duration `mapstructure:"PAYMENT_TIMEOUT"`

	// Stripe secret key used for card tokenization.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Redis configuration for the snapshot read model.
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisSnapshotDB int           `mapstructure:"REDIS_SNAPSHOT_DB"`
	SnapshotTTL     time.Duration `mapstructure:"SNAPSHOT_TTL"`

	// Simulator knobs.
	SimTrainFailureRate float64       `mapstructure:"SIM_TRAIN_FAILURE_RATE"`
	SimTapDelay         time.Duration `mapstructure:"SIM_TAP_DELAY"`
	SimDoorDelay        time.Duration `mapstructure:"SIM_DOOR_DELAY"`
	SimTrackDelay       time.Duration `mapstructure:"SIM_TRACK_DELAY"`
	SimTrainDelay       time.Duration `mapstructure:"SIM_TRAIN_DELAY"`

	// Inventory prices keyed by SKU, e.g. {"coke": "1.50"}.
	Inventory map[string]string `mapstructure:"INVENTORY"`
}

var AppConfig Config

// ErrMissingJWTSecret is returned by Load for a production config without JWT_SECRET.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in production")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("KIOSK_ID", "kiosk-1")
	v.SetDefault("PRE_AUTHENTICATED", false)
	v.SetDefault("BACKEND_URL", "http://localhost:5000")
	v.SetDefault("UNLOCK_TIMEOUT", 10*time.Second)
	v.SetDefault("PAYMENT_TIMEOUT", 15*time.Second)
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SNAPSHOT_DB", 0)
	v.SetDefault("SNAPSHOT_TTL", 30*time.Minute)
	v.SetDefault("SIM_TRAIN_FAILURE_RATE", 0.2)
	v.SetDefault("SIM_TAP_DELAY", 800*time.Millisecond)
	v.SetDefault("SIM_DOOR_DELAY", 300*time.Millisecond)
	v.SetDefault("SIM_TRACK_DELAY", 1200*time.Millisecond)
	v.SetDefault("SIM_TRAIN_DELAY", 1800*time.Millisecond)
	v.SetDefault("INVENTORY", map[string]string{})
}

// Load reads configuration from v into a Config. Exposed so tests can feed their own viper.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
