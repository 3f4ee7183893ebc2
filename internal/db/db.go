package db

import (
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, _ := gdb.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}

	log.Info().Msg("database connected")
	return gdb
}

func AutoMigrate(gdb *gorm.DB, ms ...any) {
	if err := gdb.AutoMigrate(ms...); err != nil {
		log.Fatal().Err(err).Msg("auto-migration failed")
	}
}
