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

	"github.com/securebank/bank-api/internal/accountdelivery"
	"github.com/securebank/bank-api/internal/accountlock"
	"github.com/securebank/bank-api/internal/accountrepo"
	"github.com/securebank/bank-api/internal/accountservice"
	"github.com/securebank/bank-api/internal/asyncpool"
	"github.com/securebank/bank-api/internal/middleware"
	"github.com/securebank/bank-api/internal/transactiondelivery"
	"github.com/securebank/bank-api/internal/transactionrepo"
	"github.com/securebank/bank-api/internal/transferengine"
	"github.com/securebank/bank-api/pkg/configpkg"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Server holds db connection, handlers router, worker pool and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Pool   *asyncpool.Pool
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	locks := accountlock.NewRegistry()

	accountService := accountservice.New(accountRepo, locks)
	engine := transferengine.New(accountRepo, transactionRepo, locks)
	pool := asyncpool.New(engine, config.TransferPoolSize, config.ShutdownGrace, logger)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(engine, pool)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	router.POST("/accounts", accountHandler.Create)
	router.GET("/accounts", accountHandler.List)
	router.GET("/accounts/count", accountHandler.Count)
	router.GET("/accounts/:id", accountHandler.Get)
	router.GET("/accounts/number/:number", accountHandler.GetByNumber)
	router.PUT("/accounts/:id", accountHandler.Update)
	router.DELETE("/accounts/:id", accountHandler.Delete)

	router.POST("/transfers", transactionHandler.Transfer)
	router.POST("/deposits", transactionHandler.Deposit)
	router.POST("/withdrawals", transactionHandler.Withdraw)

	router.POST("/transactions/async", transactionHandler.Submit)
	router.GET("/transactions", transactionHandler.List)
	router.GET("/transactions/:id", transactionHandler.Get)
	router.GET("/accounts/:id/transactions", transactionHandler.ListByAccount)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("amount", moneypkg.ValidAmount)
		if err != nil {
			return nil, errors.New("cannot register amount validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: router,
		Pool:   pool,
		Config: config,
	}

	return server, nil
}
