package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	routes "github.com/inkpress/inkwell/internal/api"
	"github.com/inkpress/inkwell/internal/config"
	"github.com/inkpress/inkwell/internal/db"
	"github.com/inkpress/inkwell/internal/models"
	"github.com/inkpress/inkwell/internal/reactions"
	"github.com/inkpress/inkwell/pkg/logger"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"github.com/inkpress/inkwell/pkg/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	redisClient, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize Redis")
		panic(err)
	}
	defer redisClient.Close(log)

	gormDB, err := db.NewDB(
		ctx,
		cfg.DSN(),
		models.RegisterModels(),
		db.WithLogger(log),
		db.WithPool(25, 10, time.Hour),
	)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to initialize PostgreSQL database")
		panic("DB init failed")
	}
	defer db.CloseDB(log)

	if err := models.SeedRoles(ctx, gormDB); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to seed roles")
		panic(err)
	}
	if err := reactions.SeedReactionKinds(ctx, gormDB); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to seed reaction catalog")
		panic(err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Inkwell",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	routes.NewRoutes(ctx, app, cfg, gormDB, log, redisClient)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info(ctx).Logs("Shutting down server")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Forced shutdown")
		}
	}()

	log.Info(ctx).WithMeta(utils.Map{"addr": cfg.ServerAddr}).Logs("Starting Inkwell server")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}
