package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/ledger/cmd/httpserver"
	"github.com/go-petr/ledger/db"
	"github.com/go-petr/ledger/internal/middleware"
	"github.com/go-petr/ledger/pkg/configpkg"
	"github.com/go-petr/ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	if err := db.RunMigrations(conn); err != nil {
		logger.Fatal().Err(err).Msg("cannot run migrations")
	}

	if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("cannot create upload dir")
	}

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("starting server")

	if err := http.ListenAndServe(config.ServerAddress, server); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
