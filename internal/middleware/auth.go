package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

const currentAccountKey = "currentAccount"

type AuthMiddleware struct {
	Accounts *services.AccountService
}

func NewAuthMiddleware(accounts *services.AccountService) *AuthMiddleware {
	return &AuthMiddleware{Accounts: accounts}
}

func CORS(origins string) fiber.Handler {
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, auth, filename",
		AllowMethods:  "GET,PUT,DELETE,OPTIONS",
		ExposeHeaders: "ETag, Content-Length, Last-Modified",
	})
}

// BearerToken reads the account token from the token query parameter, falling
// back to the auth header.
func BearerToken(c *fiber.Ctx) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return c.Get("auth")
}

func (a *AuthMiddleware) RequireAccount(c *fiber.Ctx) error {
	token := BearerToken(c)
	if token == "" {
		logger.Warn("token_missing", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	account, err := a.Accounts.FindByToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			logger.Warn("token_invalid", map[string]interface{}{
				"ip":   c.IP(),
				"path": c.Path(),
			})
			return utils.Error(c, fiber.StatusUnauthorized, "Invalid token")
		}
		logger.Error("token_lookup_failed", err, map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to load account")
	}

	c.Locals(currentAccountKey, account)
	c.Locals("userID", account.ID)
	return c.Next()
}

func GetCurrentAccount(c *fiber.Ctx) *models.Account {
	value := c.Locals(currentAccountKey)
	if value == nil {
		return nil
	}
	account, ok := value.(*models.Account)
	if !ok {
		return nil
	}
	return account
}
