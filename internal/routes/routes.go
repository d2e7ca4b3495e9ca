package routes

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Amityadav08/SLVNK-Backend/internal/admin"
	"github.com/Amityadav08/SLVNK-Backend/internal/auth"
	"github.com/Amityadav08/SLVNK-Backend/internal/config"
	"github.com/Amityadav08/SLVNK-Backend/internal/middleware"
	"github.com/Amityadav08/SLVNK-Backend/internal/upload"
	"github.com/Amityadav08/SLVNK-Backend/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Mongo  *mongo.Client
	Cache  *redis.Client
	Logger zerolog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce Mongo/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.Mongo == nil {
			return fmt.Errorf("mongo is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stored attachments are exposed as static content under /uploads.
	uploads, err := upload.NewStore(d.Cfg.UploadDir)
	if err != nil {
		return err
	}
	app.Static("/uploads", d.Cfg.UploadDir)

	var repo user.Repository
	if d.Mongo != nil {
		repo = user.NewMongoRepository(context.Background(), d.Logger, d.Mongo.Database(d.Cfg.MongoDB))
	} else {
		repo = user.NewMemoryRepository()
	}

	tokens := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.TokenTTL)

	userSvc := user.NewService(repo, tokens, uploads, d.Logger)
	userHandler := user.NewHandler(userSvc)

	adminSvc := admin.NewService(repo, uploads, d.Logger)
	adminHandler := admin.NewHandler(adminSvc)

	api := app.Group("/api")

	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginPerMinute)
	gate := middleware.Authenticated(tokens.Verify)

	RegisterUserRoutes(api, userHandler, gate, rateLimiter)
	RegisterAdminRoutes(api, adminHandler)

	return nil
}
