// Package main runs the ledger API that serves valuation jobs and asset edits.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	if config.MigrationURL != "" {
		if err := dbpkg.RunMigrations(config.MigrationURL, config.MigrationsPath); err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}
	defer server.Close()

	logger.Info().Str("address", config.ServerAddress).Msg("LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
