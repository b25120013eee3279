package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"electra/internal/cart"
	"electra/internal/checkout"
	"electra/internal/config"
	custommiddleware "electra/internal/middleware"
	"electra/internal/repository"
	"electra/internal/service"
	"electra/internal/session"
	"electra/internal/storage"
	"electra/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 300,
			Window:            time.Minute,
			KeyPrefix:         "electra:ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, profileRepo, refreshTokenRepo, cfg.JWT.Secret)
	resolver := session.NewResolver(profileRepo, logger)

	// Cart and pending-order state lives in Redis so it survives restarts.
	// Without Redis the server still works, but carts are process-local.
	var slot storage.Slot
	if redisClient != nil {
		slot = storage.NewRedisSlot(redisClient)
	} else {
		logger.Warn("No Redis configured, cart state will not survive restarts")
		slot = storage.NewMemorySlot()
	}
	carts := cart.NewRegistry(slot, logger)
	reconciler := checkout.NewReconciler(orderRepo, slot, cfg.Payment.CheckoutURL, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, resolver, logger)
	productHandler := transport.NewProductHandler(productRepo, logger)
	cartHandler := transport.NewCartHandler(carts, productRepo, logger)
	checkoutHandler := transport.NewCheckoutHandler(reconciler, carts, logger)
	orderHandler := transport.NewOrderHandler(orderRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	checkoutHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
