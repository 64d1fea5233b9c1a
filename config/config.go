package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// minJWTSecretLen is the minimum accepted signing secret length for HS256.
const minJWTSecretLen = 32

// ServerConfig holds all configuration for the storefront server.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	Env         string `mapstructure:"ENV"` // "development" or "production"
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`

	LogLevel        string `mapstructure:"LOG_LEVEL"`
	LogPretty       bool   `mapstructure:"LOG_PRETTY"`
	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	JWTSecretKey    string `mapstructure:"JWT_SECRET_KEY"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	OTPTTLMinutes   int    `mapstructure:"OTP_TTL_MIN"`

	WAGatewayURL   string `mapstructure:"WA_GATEWAY_URL"`
	WAGatewayToken string `mapstructure:"WA_GATEWAY_TOKEN"`

	PaymentAPIURL        string `mapstructure:"PAYMENT_API_URL"`
	PaymentAPIKey        string `mapstructure:"PAYMENT_API_KEY"`
	PaymentCallbackToken string `mapstructure:"PAYMENT_CALLBACK_TOKEN"`
}

// IsProduction reports whether the server runs in a production-like
// environment. Cookie Secure flags key off this.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadConfig reads configuration from file, environment variables, and
// defaults. A missing or too-short JWT secret is a startup error: token
// signing must never fall back to a weak default.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/topup-store/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/topup_store_dev")
	v.SetDefault("MONGO_DB_NAME", "topup_store_dev")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "topup-store")
	v.SetDefault("SESSION_TTL_HOURS", 168) // 7 days
	v.SetDefault("OTP_TTL_MIN", 5)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on env vars and defaults.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if len(cfg.JWTSecretKey) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes", minJWTSecretLen)
	}

	return &cfg, nil
}
