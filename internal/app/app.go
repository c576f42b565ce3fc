package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"usermgmt/internal/config"
	"usermgmt/internal/database"
	"usermgmt/internal/handlers"
	"usermgmt/internal/middleware"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"
	"usermgmt/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService
	UserService *services.UserService

	db       *gorm.DB
	mqClient *rabbitmq.Client
}

// New wires repositories, services and handlers according to cfg.
func New(cfg config.Config) (*App, error) {
	a := &App{}

	repo, err := a.openUserRepository(cfg)
	if err != nil {
		return nil, err
	}

	// --- Messaging ---
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mqClient = mqClient
		publisher = mqClient
	} else {
		log.Println("RabbitMQ disabled. User events will not be published.")
	}

	// --- Services ---
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	a.AuthService = services.NewAuthService(repo, hasher, cfg.JWTSecret, cfg.TokenTTL)
	a.UserService = services.NewUserService(repo, a.AuthService, hasher, publisher, services.GuardOptions{
		CallTimeout:            cfg.StoreCallTimeout,
		StrictPasswordPairs:    cfg.StrictPasswordPairs,
		AllowSelfEmail:         cfg.AllowSelfEmail,
		LegacyPatchFailureKind: cfg.LegacyPatchFailureKind,
	})

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(a.UserService)
	authHandler := handlers.NewAuthHandler(a.AuthService)

	app := fiber.New(fiber.Config{AppName: "usermgmt"})
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	app.Get("/health", a.handleHealth)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, newLimiter(cfg))
	userHandler.RegisterRoutes(apiV1, middleware.AuthRequired(a.AuthService), newLimiter(cfg))

	a.Fiber = app
	return a, nil
}

func (a *App) openUserRepository(cfg config.Config) (repositories.UserRepository, error) {
	if cfg.StoreDriver == "memory" {
		log.Println("Using in-memory user store.")
		return repositories.NewMockUserRepository(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	return repositories.NewGORMUserRepository(db), nil
}

func newLimiter(cfg config.Config) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests",
			})
		},
	})
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status, store := "healthy", "memory"
	if a.db != nil {
		store = "connected"
		if err := a.pingDB(c.UserContext()); err != nil {
			log.Printf("Health check: database unreachable: %v", err)
			status, store = "degraded", "unreachable"
		}
	}
	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"store":    store,
		"rabbitmq": a.mqClient != nil,
		"time":     time.Now().Format(time.RFC3339),
	})
}

func (a *App) pingDB(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// StartConsumer logs every user event from the broker. It is a no-op when messaging is disabled.
func (a *App) StartConsumer() error {
	if a.mqClient == nil {
		return nil
	}
	log.Println("Starting RabbitMQ consumer for user events...")
	return a.mqClient.ConsumeUserEvents(logUserEvent)
}

// Close releases the broker connection and the database pool.
func (a *App) Close() {
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
	}
}
