package app

import (
	"context"
	"fmt"

	"crosslist_backend/internal/config"
	"crosslist_backend/internal/email"
	"crosslist_backend/internal/handlers"
	"crosslist_backend/internal/logger"
	"crosslist_backend/internal/middleware"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/platforms"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/internal/routes"
	"crosslist_backend/internal/services"
	"crosslist_backend/internal/validator"
	"crosslist_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter, worker := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// Migrate applies the schema and seeds the site catalog.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.ConnectedSite{},
		&models.Listing{},
		&models.Subscription{},
	); err != nil {
		return err
	}

	connectionRepo := repositories.NewConnectionRepository(gormDB)
	return connectionRepo.SeedSites(DefaultSites())
}

// DefaultSites is the marketplace catalog shipped with the app. Disabled
// entries show up in the UI as "coming soon" and reject connections.
func DefaultSites() []models.Site {
	return []models.Site{
		{ID: "facebook", Name: "Facebook Marketplace", URL: "https://facebook.com/marketplace", Description: "Local buy and sell listings", Enabled: true},
		{ID: "ebay", Name: "eBay", URL: "https://ebay.com", Description: "Auctions and fixed-price listings", Enabled: true},
		{ID: "etsy", Name: "Etsy", URL: "https://etsy.com", Description: "Handmade and vintage goods", Enabled: true},
		{ID: "amazon", Name: "Amazon", URL: "https://amazon.com", Description: "Marketplace integration coming soon", Enabled: false},
		{ID: "shopify", Name: "Shopify", URL: "https://shopify.com", Description: "Store integration coming soon", Enabled: false},
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.SubscriptionWorker) {
	userRepo := repositories.NewUserRepository(gormDB)
	connectionRepo := repositories.NewConnectionRepository(gormDB)
	listingRepo := repositories.NewListingRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)

	sites, err := connectionRepo.FindEnabledSites()
	if err != nil {
		logger.Fatal("Failed to load site catalog", "error", err)
	}
	registry := platforms.DefaultRegistry(sites)

	serviceContainer := services.NewServiceContainer(userRepo, connectionRepo, listingRepo, subscriptionRepo, registry)
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	mailer := email.NewProvider(cfg.Email)
	worker := workers.NewSubscriptionWorker(subscriptionRepo, userRepo, mailer)

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, worker
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())
	ginRouter.Use(middleware.CORSMiddleware())

	return ginRouter
}
