// main.go
//
// An equine records REST service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of equirecords.
// equirecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// equirecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with equirecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/database"
	"github.com/localnerve/equirecords/internal/handlers"
	"github.com/localnerve/equirecords/internal/logging"
	"github.com/localnerve/equirecords/internal/middleware"
	"github.com/localnerve/equirecords/internal/publish"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/storage"
	"github.com/localnerve/equirecords/internal/utils"

	_ "github.com/localnerve/equirecords/docs/api" // Swagger docs
)

// @title EquiRecords API
// @version 1.0.0
// @description Horse registry with veterinary tests, competition performances and preventive care
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/equirecords
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	store, err := storage.New(cfg.UploadDir)
	if err != nil {
		zl.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	var dashboardCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zl.Warn("redis unavailable, dashboard cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			dashboardCache = redisCache
		}
	}
	defer dashboardCache.Close()

	var publisher publish.Publisher = publish.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = publish.NewKafka(cfg.KafkaBrokers, cfg.KafkaStatusTopic)
		zl.Info("publishing status events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaStatusTopic))
	}
	defer publisher.Close()

	// Authorizer is initialized on the first authenticated request
	auth := services.NewAuthorizer(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    cfg.MaxUploadMB << 20,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestId} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("equirecords")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Stored documents
	app.Static(storage.PublicPrefix, store.Root())

	handlers.RegisterRoutes(app.Group("/api"), handlers.Deps{
		DB:        db,
		Store:     store,
		Cache:     dashboardCache,
		Publisher: publisher,
		Auth:      auth,
		Config:    cfg,
		Now:       time.Now,
	}, middleware.RequirePermission(db, auth))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		zl.Info("gracefully shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zl.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server failed", zap.Error(err))
	}

	zl.Info("server stopped")
}
