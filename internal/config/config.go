/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables, with an
 * optional .env file for local development.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the bank service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	TokenTTLHours          int    `mapstructure:"TOKEN_TTL_HOURS"`
	BankCode               string `mapstructure:"BANK_CODE"`
	OpeningBalance         string `mapstructure:"OPENING_BALANCE"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix   string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	TransferRatePerMinute  int    `mapstructure:"TRANSFER_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_TTL_HOURS", 72)
	viper.SetDefault("BANK_CODE", "BSA")
	viper.SetDefault("OPENING_BALANCE", "5000")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "bankapp:rate_limit")
	viper.SetDefault("TRANSFER_RATE_LIMIT_PER_MINUTE", 0)

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("TOKEN_TTL_HOURS")
	_ = viper.BindEnv("BANK_CODE")
	_ = viper.BindEnv("OPENING_BALANCE")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("TRANSFER_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the optional .env file. Absence is fine.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.BankCode = strings.ToUpper(strings.TrimSpace(config.BankCode))
	if config.BankCode == "" {
		config.BankCode = "BSA"
	}
	if config.TokenTTLHours <= 0 {
		config.TokenTTLHours = 72
	}
	if config.TransferRatePerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative transfer rate limit configured; disabling\" value=%d", config.TransferRatePerMinute)
		config.TransferRatePerMinute = 0
	}

	return
}
