package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

type SharesHandler struct {
	Sharing *services.SharingService
}

func NewSharesHandler(sharing *services.SharingService) *SharesHandler {
	return &SharesHandler{Sharing: sharing}
}

func (h *SharesHandler) UserByCode(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	target, err := h.Sharing.ResolveByCode(c.Context(), account, c.Query("code"))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"user": target.PublicProfile()})
}

func (h *SharesHandler) Grant(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if _, err := h.Sharing.GrantShare(c.Context(), account, c.Query("code"), c.Query("photo")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil)
}

func (h *SharesHandler) Revoke(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if err := h.Sharing.RevokeShare(c.Context(), account, c.Query("code"), c.Query("photo")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil)
}

func (h *SharesHandler) List(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	shares, err := h.Sharing.ListShares(c.Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"shares": shares})
}

// GetSharedPhoto streams a photo another account granted to the caller.
func (h *SharesHandler) GetSharedPhoto(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	obj, err := h.Sharing.OpenSharedPhoto(c.Context(), account, c.Query("owner"), c.Query("photo"))
	if err != nil {
		return respondError(c, err)
	}
	return sendObject(c, obj)
}

func (h *SharesHandler) ListBlocks(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	blocked, err := h.Sharing.ListBlocks(c.Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"blocked": blocked})
}

func (h *SharesHandler) Block(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if err := h.Sharing.Block(c.Context(), account, c.Query("user")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil)
}

func (h *SharesHandler) Unblock(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if err := h.Sharing.Unblock(c.Context(), account, c.Query("user")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil)
}
