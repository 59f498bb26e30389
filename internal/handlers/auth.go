package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/identity"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/utils"
)

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url={{.}}">
<title>Signing in</title>
</head>
<body>
<p>Returning to the app. <a href="{{.}}">Continue</a> if nothing happens.</p>
<script>window.location.replace({{.}});</script>
</body>
</html>
`))

type AuthHandler struct {
	Identity    *identity.Client
	Accounts    *services.AccountService
	CallbackURL string
}

func NewAuthHandler(identityClient *identity.Client, accounts *services.AccountService, callbackURL string) *AuthHandler {
	return &AuthHandler{Identity: identityClient, Accounts: accounts, CallbackURL: callbackURL}
}

// Authenticate starts sign-in when no session token is present, otherwise
// exchanges the session token for the account's bearer token and hands it
// back to the desktop app through its local callback.
func (h *AuthHandler) Authenticate(c *fiber.Ctx) error {
	if c.Context().QueryArgs().Has("denied") {
		return h.renderRedirect(c, h.CallbackURL+"?denied")
	}

	session := c.Query("id")
	if session == "" {
		session = middleware.BearerToken(c)
	}
	if session == "" {
		return c.Redirect(h.Identity.AuthorizeURL(uuid.NewString()), fiber.StatusFound)
	}

	profile, err := h.Identity.Resolve(c.Context(), session)
	if err != nil {
		var upstream *identity.UpstreamError
		if errors.As(err, &upstream) {
			status := upstream.Status
			if status < fiber.StatusBadRequest {
				status = fiber.StatusUnauthorized
			}
			logger.Warn("identity_resolve_rejected", map[string]interface{}{
				"ip":     c.IP(),
				"status": upstream.Status,
			})
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(status).Send(upstream.Body)
		}
		logger.Error("identity_resolve_failed", err, map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusBadGateway, "Identity provider unavailable")
	}

	if err := h.Identity.Invalidate(c.Context(), session); err != nil {
		logger.WarnWithUser(profile.ID, "session_token_invalidate_failed", map[string]interface{}{
			"username": profile.Username,
			"error":    err.Error(),
		})
	}

	account, err := h.Accounts.EnsureAccount(c.Context(), *profile)
	if err != nil {
		return respondError(c, err)
	}

	c.Locals("userID", account.ID)
	logger.InfoWithUser(account.ID, "login_success", map[string]interface{}{
		"username": account.Username,
		"ip":       c.IP(),
	})

	return h.renderRedirect(c, h.CallbackURL+"?token="+url.QueryEscape(account.Token))
}

func (h *AuthHandler) renderRedirect(c *fiber.Ctx, target string) error {
	var buf bytes.Buffer
	if err := redirectPage.Execute(&buf, target); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func Status(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, nil)
}
