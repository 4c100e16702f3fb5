package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"etalase/internal/assets"
	"etalase/internal/config"
	"etalase/internal/handlers"
	"etalase/internal/middleware"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/internal/services"
	"etalase/pkg/rabbitmq"
)

// maxBodyBytes leaves room for one image plus the text fields.
const maxBodyBytes = 12 << 20

// App is the assembled HTTP server and the resources it owns.
type App struct {
	Fiber     *fiber.App
	Inventory *services.InventoryService
	Auth      *services.AuthService

	closers []func() error
}

// New wires repositories, asset storage, events, services and routes from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	itemRepo, adminRepo, err := a.openRepositories(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	server := fiber.New(fiber.Config{
		AppName:      "etalase",
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		BodyLimit:    maxBodyBytes,
	})
	a.Fiber = server

	store, err := a.openImageStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher := a.openPublisher(cfg)

	a.Inventory = services.NewInventoryService(itemRepo, assets.NewImageManager(store), publisher).
		WithSearchThreshold(cfg.SearchThreshold)
	a.Auth = services.NewAuthService(adminRepo, cfg.JWTSecret, cfg.TokenTTL)

	if err := a.Auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		a.Close()
		return nil, err
	}
	if cfg.SeedDemo {
		seedItems(ctx, a.Inventory)
	}

	server.Use(recover.New())
	server.Use(logger.New())
	server.Use(requestContext(cfg.RequestTimeout))

	if cfg.AssetBackend == "local" {
		server.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	apiV1 := server.Group("/api/v1")
	handlers.NewAuthHandler(a.Auth).RegisterRoutes(apiV1)

	itemHandler := handlers.NewItemHandler(a.Inventory)
	itemHandler.RegisterRoutes(apiV1)
	itemHandler.RegisterAdminRoutes(apiV1.Group("/admin", middleware.AuthRequired(a.Auth)))

	events := "disabled"
	if publisher != nil {
		events = "enabled"
	}
	server.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events,
		})
	})

	return a, nil
}

// Close releases every resource opened by New, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openRepositories(cfg *config.Config) (repositories.ItemRepository, repositories.AdminRepository, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "memory":
		log.Println("Using in-memory repositories; data is lost on restart")
		return repositories.NewMockItemRepository(), repositories.NewMockAdminRepository(), nil
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	if err := db.AutoMigrate(&models.Item{}, &models.Variant{}, &models.Admin{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return repositories.NewGORMItemRepository(db), repositories.NewGORMAdminRepository(db), nil
}

func (a *App) openImageStore(ctx context.Context, cfg *config.Config) (assets.Store, error) {
	switch cfg.AssetBackend {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return assets.NewGCSStore(client, cfg.GCSBucket, cfg.GCSPrefix)
	case "local":
		return assets.NewLocalStore(afero.NewOsFs(), cfg.UploadDir, cfg.UploadURLPrefix)
	default:
		return nil, fmt.Errorf("unsupported ASSET_BACKEND %q", cfg.AssetBackend)
	}
}

// openPublisher returns nil when events are disabled or the broker is
// unreachable; inventory writes never depend on it.
func (a *App) openPublisher(cfg *config.Config) services.EventPublisher {
	if cfg.RabbitMQURL == "" {
		return nil
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:       cfg.RabbitMQURL,
		Exchanges: []string{services.InventoryExchange},
	})
	if err != nil {
		log.Printf("Warning: inventory events disabled: %v", err)
		return nil
	}
	a.closers = append(a.closers, client.Close)
	return client
}

// requestContext gives every handler a context bounded by timeout.
func requestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
