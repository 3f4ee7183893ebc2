package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DSN       string
	JWTSecret string
	AppPort   string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, using system environment variables")
	}

	cfg := Config{
		DSN:       os.Getenv("MYSQL_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		AppPort:   os.Getenv("APP_PORT"),
	}

	if cfg.DSN == "" {
		log.Fatal().Msg("MYSQL_DSN not set in environment")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg
}
