package config

import (
	"fmt"

	"github.com/inkpress/inkwell/pkg/utils"
	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	JWTSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// LoadConfig reads configuration from the environment, falling back to
// an optional .env file and built-in defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// a missing .env file is fine, the environment wins anyway
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("PORT", ":8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "inkwell")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("SMTP_HOST", "0.0.0.0")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("FROM_EMAIL", "no-reply@inkwell.dev")

	cfg := &Config{
		ServerAddr:    v.GetString("PORT"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetInt("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASS"),
		DBName:        v.GetString("DB_NAME"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASS"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		SMTPHost:      v.GetString("SMTP_HOST"),
		SMTPPort:      v.GetInt("SMTP_PORT"),
		SMTPUsername:  v.GetString("SMTP_USER"),
		SMTPPassword:  v.GetString("SMTP_PASS"),
		AppURL:        v.GetString("APP_URL"),
		FromEmail:     v.GetString("FROM_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// Email bundles the SMTP settings the mailer needs.
func (c *Config) Email() utils.EmailConfig {
	return utils.EmailConfig{
		SMTPHost:     c.SMTPHost,
		SMTPPort:     c.SMTPPort,
		SMTPUsername: c.SMTPUsername,
		SMTPPassword: c.SMTPPassword,
		AppURL:       c.AppURL,
		FromEmail:    c.FromEmail,
	}
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
