package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort    string
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	TokenTTL   time.Duration
	AMQPURL    string
	GinMode    string
}

func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "taskuser")
	viper.SetDefault("DB_PASSWORD", "taskpassword")
	viper.SetDefault("DB_NAME", "taskflow")
	viper.SetDefault("JWT_SECRET", "default-secret-key-change-me")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("GIN_MODE", "debug")
	viper.AutomaticEnv()

	ttl, err := time.ParseDuration(viper.GetString("TOKEN_TTL"))
	if err != nil {
		ttl = 24 * time.Hour
	}

	return &Config{
		AppPort:    viper.GetString("APP_PORT"),
		DBDriver:   viper.GetString("DB_DRIVER"),
		DBHost:     viper.GetString("DB_HOST"),
		DBPort:     viper.GetString("DB_PORT"),
		DBUser:     viper.GetString("DB_USER"),
		DBPassword: viper.GetString("DB_PASSWORD"),
		DBName:     viper.GetString("DB_NAME"),
		JWTSecret:  viper.GetString("JWT_SECRET"),
		TokenTTL:   ttl,
		AMQPURL:    viper.GetString("AMQP_URL"),
		GinMode:    viper.GetString("GIN_MODE"),
	}
}
