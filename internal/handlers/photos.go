package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/photos"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

type PhotosHandler struct {
	Photos *services.PhotoService
}

func NewPhotosHandler(photoService *services.PhotoService) *PhotosHandler {
	return &PhotosHandler{Photos: photoService}
}

// ValidateUpload runs ahead of authentication so malformed uploads are
// rejected without a token lookup.
func (h *PhotosHandler) ValidateUpload(c *fiber.Ctx) error {
	if err := services.ValidateUpload(c.Get(fiber.HeaderContentType), c.Get("filename")); err != nil {
		return respondError(c, err)
	}
	return c.Next()
}

func (h *PhotosHandler) Upload(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	body := c.Body()
	result, err := h.Photos.Upload(c.Context(), account, c.Get("filename"), c.Get(fiber.HeaderContentType), bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return respondError(c, err)
	}

	if result.Duplicate {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"warning": "File already exists"})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"size": result.Size})
}

// ValidateDelete mirrors ValidateUpload for the photo query parameter.
func (h *PhotosHandler) ValidateDelete(c *fiber.Ctx) error {
	if !photos.ValidFilename(c.Query("photo")) {
		return respondError(c, services.ErrInvalidFilename)
	}
	return c.Next()
}

func (h *PhotosHandler) Delete(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	if err := h.Photos.Delete(c.Context(), account, c.Query("photo")); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil)
}

// Exists lists every photo when no photo is named, otherwise probes one.
func (h *PhotosHandler) Exists(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	photo := c.Query("photo")
	if photo == "" {
		files, err := h.Photos.List(c.Context(), account)
		if err != nil {
			return respondError(c, err)
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{"files": files})
	}

	exists, err := h.Photos.Exists(c.Context(), account, photo)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"exists": exists})
}

func (h *PhotosHandler) Get(c *fiber.Ctx) error {
	photo := c.Query("photo")
	if photo == "" {
		return utils.Error(c, fiber.StatusBadRequest, "No photo specified")
	}

	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	obj, err := h.Photos.Open(c.Context(), account, photo)
	if err != nil {
		return respondError(c, err)
	}
	return sendObject(c, obj)
}

func (h *PhotosHandler) DeleteAll(c *fiber.Ctx) error {
	account := middleware.GetCurrentAccount(c)
	if account == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "No token provided")
	}

	deleted, err := h.Photos.Reset(c.Context(), account)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}
