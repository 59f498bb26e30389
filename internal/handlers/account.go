package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

type AccountHandler struct {
	Accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

// Get returns the caller's own account. The share code is assigned on first
// request.
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if _, err := h.Accounts.EnsureShareCode(c.Context(), account); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"user": account})
}

type updateSettingsRequest struct {
	EnableSync *bool `json:"enableSync"`
}

func (h *AccountHandler) UpdateSettings(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.EnableSync == nil {
		return utils.Error(c, fiber.StatusBadRequest, "enableSync is required")
	}

	settings := models.Settings{EnableSync: *req.EnableSync}
	if err := h.Accounts.UpdateSettings(c.Context(), account, settings); err != nil {
		return respondError(c, err)
	}

	logger.InfoWithUser(account.ID, "account_settings_updated", map[string]interface{}{
		"enable_sync": settings.EnableSync,
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"settings": account.Settings})
}
