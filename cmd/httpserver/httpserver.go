// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/accountservice"
	"github.com/go-petr/pet-finance/internal/entrydelivery"
	"github.com/go-petr/pet-finance/internal/entryrepo"
	"github.com/go-petr/pet-finance/internal/entryservice"
	"github.com/go-petr/pet-finance/internal/idempotency"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/sessiondelivery"
	"github.com/go-petr/pet-finance/internal/sessionrepo"
	"github.com/go-petr/pet-finance/internal/sessionservice"
	"github.com/go-petr/pet-finance/internal/transferdelivery"
	"github.com/go-petr/pet-finance/internal/transferrepo"
	"github.com/go-petr/pet-finance/internal/transferservice"
	"github.com/go-petr/pet-finance/internal/userdelivery"
	"github.com/go-petr/pet-finance/internal/userrepo"
	"github.com/go-petr/pet-finance/internal/userservice"
	"github.com/go-petr/pet-finance/pkg/configpkg"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Redis  *redis.Client
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the connections held by the server.
func (s *Server) Close() error {
	var errs []error

	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}

	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}

	return errors.Join(errs...)
}

// newKeyGuard connects to redis when an address is configured.
//
// Without redis idempotency keys are not checked.
func newKeyGuard(ctx context.Context, logger zerolog.Logger, config configpkg.Config) (transferservice.KeyGuard, *redis.Client, error) {
	if config.RedisAddress == "" {
		logger.Warn().Msg("REDIS_ADDRESS is empty, idempotency keys are disabled")
		return nil, nil, nil
	}

	client, err := idempotency.Connect(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB)
	if err != nil {
		return nil, nil, err
	}

	return idempotency.NewRedisStore(client, config.IdempotencyTTL), client, nil
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	sessionService, err := sessionservice.New(sessionrepo.NewRepoPGS(conn), config, tokenMaker)
	if err != nil {
		return nil, fmt.Errorf("cannot create session service: %w", err)
	}

	guard, redisClient, err := newKeyGuard(logger.WithContext(context.Background()), logger, config)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to idempotency store: %w", err)
	}

	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	entryRepo := entryrepo.NewRepoPGS(conn)
	transferRepo := transferrepo.NewRepoPGS(conn)

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)
	entryService := entryservice.New(entryRepo, accountRepo)
	transferService := transferservice.New(accountRepo, transferRepo, guard, transferservice.Config{
		ConditionalWrites:         config.ConditionalBalanceWrites,
		CompensationMaxRetries:    config.CompensationMaxRetries,
		CompensationRetryInterval: config.CompensationRetryInterval,
	})

	userHandler := userdelivery.NewHandler(userService, sessionService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	accountHandler := accountdelivery.NewHandler(accountService)
	entryHandler := entrydelivery.NewHandler(entryService)
	transferHandler := transferdelivery.NewHandler(transferService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/candidates", accountHandler.Candidates)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.PATCH("/accounts/:id", accountHandler.UpdateFlags)

	authRoutes.POST("/accounts/:id/entries", entryHandler.Create)
	authRoutes.GET("/accounts/:id/entries", entryHandler.List)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/transfers", transferHandler.List)

	server := &Server{
		DB:     conn,
		Redis:  redisClient,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
