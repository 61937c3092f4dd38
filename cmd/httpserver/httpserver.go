// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/ledger/internal/categoryrepo"
	"github.com/go-petr/ledger/internal/importengine"
	"github.com/go-petr/ledger/internal/middleware"
	"github.com/go-petr/ledger/internal/transactiondelivery"
	"github.com/go-petr/ledger/internal/transactionrepo"
	"github.com/go-petr/ledger/internal/transactionservice"
	"github.com/go-petr/ledger/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	categoryRepo := categoryrepo.NewRepoPGS(conn)

	transactionService := transactionservice.New(transactionRepo, categoryRepo)
	importEngine := importengine.New(transactionRepo, categoryRepo)

	transactionHandler := transactiondelivery.NewHandler(transactionService, importEngine, config.UploadDir)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/transactions", transactionHandler.List)
	engine.POST("/transactions", transactionHandler.Create)
	engine.DELETE("/transactions/:id", transactionHandler.Delete)
	engine.POST("/transactions/import", transactionHandler.Import)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("kind", transactiondelivery.ValidKind)
		if err != nil {
			return nil, errors.New("cannot register kind validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
