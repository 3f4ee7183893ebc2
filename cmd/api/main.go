package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"estatehub/internal/config"
	"estatehub/internal/db"
	httpserver "estatehub/internal/http"
	"estatehub/internal/models"
	"estatehub/internal/seed"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	gdb := db.Connect(cfg.DSN)
	db.AutoMigrate(gdb, models.All()...)

	if err := seed.FirstSetup(gdb); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	r := httpserver.NewRouter(gdb, cfg.JWTSecret)
	log.Info().Str("port", cfg.AppPort).Msg("server listening")
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
