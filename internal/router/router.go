// Package router assembles the HTTP application. The server binary and the
// handler tests both build their app here.
package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/handlers"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/identity"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/metrics"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

type Deps struct {
	Accounts    *services.AccountService
	Photos      *services.PhotoService
	Sharing     *services.SharingService
	Identity    *identity.Client
	CallbackURL string
	CORSOrigins string
	BodyLimitMB int
}

func New(deps Deps) *fiber.App {
	bodyLimit := deps.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 64
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(deps.CORSOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	app.Use(metrics.Middleware())

	app.Get("/metrics", metrics.Handler())

	authHandler := handlers.NewAuthHandler(deps.Identity, deps.Accounts, deps.CallbackURL)
	accountHandler := handlers.NewAccountHandler(deps.Accounts)
	photosHandler := handlers.NewPhotosHandler(deps.Photos)
	sharesHandler := handlers.NewSharesHandler(deps.Sharing)
	authMiddleware := middleware.NewAuthMiddleware(deps.Accounts)
	requireAccount := authMiddleware.RequireAccount

	api := app.Group("/api/v1")
	api.Get("/status", handlers.Status)
	api.Get("/auth", authHandler.Authenticate)

	api.Get("/account", requireAccount, accountHandler.Get)
	api.Put("/account/settings", requireAccount, accountHandler.UpdateSettings)

	api.Get("/photos/exists", requireAccount, photosHandler.Exists)
	api.Get("/photos", requireAccount, photosHandler.Get)
	api.Put("/photos", photosHandler.ValidateUpload, requireAccount, photosHandler.Upload)
	api.Delete("/photos", photosHandler.ValidateDelete, requireAccount, photosHandler.Delete)
	api.Delete("/allphotos", requireAccount, photosHandler.DeleteAll)

	api.Get("/user/byCode", requireAccount, sharesHandler.UserByCode)
	api.Get("/share", requireAccount, sharesHandler.Grant)
	api.Delete("/share", requireAccount, sharesHandler.Revoke)
	api.Get("/shares", requireAccount, sharesHandler.List)
	api.Get("/shares/photo", requireAccount, sharesHandler.GetSharedPhoto)

	api.Get("/blocks", requireAccount, sharesHandler.ListBlocks)
	api.Put("/blocks", requireAccount, sharesHandler.Block)
	api.Delete("/blocks", requireAccount, sharesHandler.Unblock)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("404 Not Found")
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error("unhandled_error", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
	}
	return utils.Error(c, status, message)
}
