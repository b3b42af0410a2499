package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	v1 "github.com/inkpress/inkwell/internal/api/v1"
	"github.com/inkpress/inkwell/internal/auth"
	"github.com/inkpress/inkwell/internal/config"
	"github.com/inkpress/inkwell/pkg/logger"
	storage "github.com/inkpress/inkwell/pkg/redis"
	"gorm.io/gorm"
)

func NewRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *gorm.DB, log *logger.Logger, rclient *storage.RedisClient) {
	app.Use(
		logger.SetupLogger(log),
		recover.New(),
		cors.New(
			cors.Config{
				AllowOrigins:     cfg.AppURL,
				AllowCredentials: true,
				AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			},
		),
		compress.New(
			compress.Config{
				Level: compress.LevelBestCompression,
			},
		),
		limiter.New(
			limiter.Config{
				Expiration: 1 * time.Minute,
				Max:        100,
				KeyGenerator: func(c *fiber.Ctx) string {
					return c.IP()
				},
			},
		),
	)
	app.Use(log.Middleware())

	v1.Setup(db, rclient, log, cfg.Email())
	opt := auth.Options{DB: db, Rclient: rclient, Logger: log}

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", v1.Register)
	authGroup.Post("/activate", v1.ActivateUser)
	authGroup.Post("/login", v1.Login)
	authGroup.Post("/logout", auth.Protected(opt), v1.Logout)

	api.Get("/articles", v1.ListArticles)
	api.Get("/articles/:slug", v1.GetArticle)
	api.Post("/articles", auth.Protected(opt), auth.CheckPerm(opt, "create_article"), v1.CreateArticle)
	api.Put("/articles/:id", auth.Protected(opt), v1.UpdateArticle)
	api.Delete("/articles/:id", auth.Protected(opt), v1.DeleteArticle)

	api.Get("/articles/:id/comments", v1.ListComments)
	api.Post("/articles/:id/comments", auth.Protected(opt), auth.CheckPerm(opt, "create_comment"), v1.CreateComment)
	api.Put("/comments/:id", auth.Protected(opt), v1.UpdateComment)
	api.Delete("/comments/:id", auth.Protected(opt), v1.DeleteComment)

	api.Get("/reactions", v1.ListReactionKinds)
	api.Get("/:subjectType/:id/reactions", auth.OptionalAuth(opt), v1.GetReactionSummary)
	api.Post("/:subjectType/:id/reactions", auth.Protected(opt), auth.CheckPerm(opt, "give_reaction"), v1.AssignReaction)
	api.Delete("/:subjectType/:id/reactions", auth.Protected(opt), v1.RemoveReaction)

	go func() {
		<-ctx.Done()
		rclient.Close(log)
		log.Close()
	}()
}
