// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskhub/config"
	"taskhub/database"
	"taskhub/handlers"
	"taskhub/middleware"
	"taskhub/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.ConfigureLogging()

	if err := database.InitDB(cfg); err != nil {
		log.WithError(err).Fatal("database initialization failed")
	}
	defer database.CloseDB()
	db := database.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := services.NewCommentFeed()
	if opts := cfg.RedisOptions(); opts != nil {
		rc := redis.NewClient(opts)
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, comment relay will retry")
		}
		relay := services.NewRedisRelay(rc, cfg.RedisChannel, feed)
		feed.SetRelay(relay)
		go relay.Run(ctx)
		log.WithField("channel", cfg.RedisChannel).Info("comment relay enabled")
	}

	h := &handlers.Handler{
		Users:     services.NewUserService(db),
		Teams:     services.NewTeamService(db),
		Tasks:     services.NewTaskService(db, feed),
		Comments:  services.NewCommentService(db, feed),
		Dashboard: services.NewDashboardService(db, cfg.TopPerformersLimit),
		Feed:      feed,
		Auth:      middleware.NewAuth(cfg.JWTSecret, cfg.JWTTTL),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction()),
		BodyLimit:    1 * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	if cfg.IsProduction() && cfg.CORSOrigins == "http://localhost:3000" {
		log.Warn("CORS_ORIGINS not properly configured for production")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Timezone",
		AllowCredentials: true,
	}))

	var authLimit fiber.Handler
	if cfg.RateLimitEnabled {
		general := middleware.NewRateLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow)
		auth := middleware.NewRateLimiter(cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow)
		middleware.StartCleanup(ctx, 10*time.Minute, general, auth)

		app.Use(middleware.RateLimit(general, "Rate limit exceeded. Please try again later."))
		authLimit = middleware.RateLimit(auth, "Too many authentication attempts. Please try again later.")
	}

	h.Register(app, authLimit)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"port":       cfg.Port,
		"env":        cfg.AppEnv,
		"driver":     cfg.DBDriver,
		"ws":         "/ws/tasks/:id/comments",
		"rate_limit": cfg.RateLimitEnabled,
		"relay":      cfg.RedisURL != "",
	}).Info("HTTP server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start HTTP server")
	}
}
