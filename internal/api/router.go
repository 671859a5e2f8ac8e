package api

import (
	"jonglaw/docs"
	"jonglaw/internal/api/handlers"
	"jonglaw/pkg/auth"
	"jonglaw/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	queryHandler *handlers.QueryHandler,
	historyHandler *handlers.HistoryHandler,
	lawHandler *handlers.LawHandler,
	uploadHandler *handlers.UploadHandler,
	watchHandler *handlers.WatchHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "JongLaw AI Backend Running"})
	})

	// Auth routes (public)
	authGroup := app.Group("/auth")
	authGroup.Post("/signup", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	requireAuth := middleware.AuthMiddleware(jwtManager, appLogger)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtManager)

	authGroup.Get("/me", requireAuth, authHandler.GetMe)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)

	// Query works anonymously; a valid token upgrades it with history.
	app.Post("/query", optionalAuth, queryHandler.Query)

	// Law routes (public)
	laws := app.Group("/laws")
	laws.Get("/search", lawHandler.Search)
	laws.Get("/article", lawHandler.GetArticle)
	laws.Get("/synced", lawHandler.Synced)
	laws.Post("/recommend", lawHandler.Recommend)

	// Upload and analysis routes (public)
	app.Post("/upload", uploadHandler.Upload)
	app.Get("/uploads", uploadHandler.List)
	app.Delete("/uploads/:source", uploadHandler.Delete)
	app.Post("/analyze-document", uploadHandler.AnalyzeDocument)
	app.Post("/analyze-image", uploadHandler.AnalyzeDocument)

	// History routes (protected)
	history := app.Group("/history", requireAuth)
	history.Get("", historyHandler.List)
	history.Get("/:id", historyHandler.Get)
	history.Delete("/:id", historyHandler.Delete)
	app.Post("/chat/report/:id", requireAuth, historyHandler.Followup)

	// Legal watch routes
	subscriptions := app.Group("/subscriptions", requireAuth)
	subscriptions.Get("", watchHandler.ListSubscriptions)
	subscriptions.Post("", watchHandler.Subscribe)
	subscriptions.Delete("", watchHandler.Unsubscribe)

	notifications := app.Group("/notifications", requireAuth)
	notifications.Get("", watchHandler.ListNotifications)
	notifications.Patch("/:id/read", watchHandler.MarkRead)
	notifications.Post("/read-all", watchHandler.MarkAllRead)

	app.Post("/legal-watch/check", watchHandler.Check)

	return app
}
