package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"golang.org/x/oauth2"
)

const (
	authorizePath  = "/api/v1/oauth"
	profilePath    = "/api/v1/user/@me"
	invalidatePath = "/api/v1/oauth/token"
)

// Profile is the stable identity the provider reports for a session.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UpstreamError carries a not-ok provider response verbatim so it can be
// handed back to the caller unchanged.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("identity provider returned status %d: %s", e.Status, string(e.Body))
}

type Client struct {
	cfg        config.IdentityConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewClient(cfg config.IdentityConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID: cfg.AppID,
			Endpoint: oauth2.Endpoint{AuthURL: cfg.BaseURL + authorizePath},
		},
		httpClient: httpClient,
	}
}

// AuthorizeURL is where a user without a session token is sent to sign in.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("app", c.cfg.AppID))
}

// Resolve activates the session for this application and returns the profile
// behind it. The provider binds a session to an app the first time the app
// presents its own token together with the session token.
func (c *Client) Resolve(ctx context.Context, sessionToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+profilePath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("auth", sessionToken)
	req.Header.Set("oauth", c.cfg.AppToken)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		OK bool `json:"ok"`
		Profile
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Status: status, Body: body}
	}
	if !payload.OK || status >= http.StatusBadRequest {
		return nil, &UpstreamError{Status: status, Body: body}
	}
	if payload.ID == "" {
		return nil, errors.New("identity provider returned a profile without an id")
	}

	return &payload.Profile, nil
}

// Invalidate burns a spent session token.
func (c *Client) Invalidate(ctx context.Context, sessionToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.BaseURL+invalidatePath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("auth", sessionToken)

	body, status, err := c.do(req)
	if err != nil {
		return err
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || !payload.OK {
		return &UpstreamError{Status: status, Body: body}
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("identity_request_failed", map[string]interface{}{
			"method": req.Method,
			"path":   req.URL.Path,
			"error":  err.Error(),
		})
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return bytes.TrimSpace(body), resp.StatusCode, nil
}
