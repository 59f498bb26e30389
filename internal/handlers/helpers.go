package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrMissingToken, fiber.StatusUnauthorized, "No token provided"},
	{services.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid token"},
	{services.ErrInvalidContentType, fiber.StatusBadRequest, "Invalid content type"},
	{services.ErrInvalidFilename, fiber.StatusBadRequest, "Invalid file name"},
	{services.ErrMissingCode, fiber.StatusBadRequest, "No code provided"},
	{services.ErrSelfShare, fiber.StatusBadRequest, "Cannot share with yourself"},
	{services.ErrSelfBlock, fiber.StatusBadRequest, "Cannot block yourself"},
	{services.ErrSyncDisabled, fiber.StatusForbidden, "Sync is disabled"},
	{services.ErrQuotaExceeded, fiber.StatusForbidden, "Storage quota exceeded"},
	{services.ErrPhotoNotFound, fiber.StatusNotFound, "Photo doesn't exist"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "Cannot find user"},
	{services.ErrAccountNotFound, fiber.StatusNotFound, "Cannot find user"},
	{services.ErrShareNotFound, fiber.StatusNotFound, "Share not found"},
	{services.ErrDuplicateShare, fiber.StatusConflict, "Photo already shared with this user"},
	{services.ErrInconsistentState, fiber.StatusInternalServerError, "Storage is in an inconsistent state"},
	{storage.ErrTooManyPages, fiber.StatusInternalServerError, "Too many photos to list"},
}

// respondError maps service errors to their status and client message.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *fiber.Ctx, err error) error {
	for _, candidate := range errorResponses {
		if errors.Is(err, candidate.err) {
			return utils.Error(c, candidate.status, candidate.message)
		}
	}

	details := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, "request_failed", err, details)
	} else {
		logger.Error("request_failed", err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, "Internal server error")
}

func sendObject(c *fiber.Ctx, obj *storage.Object) error {
	info := obj.Info
	if info.ContentType != "" {
		c.Set(fiber.HeaderContentType, info.ContentType)
	}
	if info.ETag != "" {
		c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
	}
	if !info.LastModified.IsZero() {
		c.Set(fiber.HeaderLastModified, info.LastModified.UTC().Format(http.TimeFormat))
	}
	return c.Status(fiber.StatusOK).SendStream(obj.Body, int(info.Size))
}
