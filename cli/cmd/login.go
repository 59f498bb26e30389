package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagToken    string
	flagNoBrowse bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with your photo server",
	Long: `Authenticate with a session token issued by the server.

Browser (default):
  vrcphotos login
  Opens the sign-in page. After approving, copy the token from the
  callback URL and run "vrcphotos login --token <token>".

Token:
  vrcphotos login --token 0123abcd...`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&flagToken, "token", "", "Session token from the sign-in callback")
	loginCmd.Flags().BoolVar(&flagNoBrowse, "no-browser", false, "Print the sign-in URL instead of opening it")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if flagToken != "" {
		return loginWithToken(flagToken)
	}

	authURL := apiClient.AuthURL()
	fmt.Printf("Sign in at:\n  %s\n\n", authURL)
	if !flagNoBrowse {
		_ = openBrowser(authURL)
	}
	fmt.Println(`Then run "vrcphotos login --token <token>" with the token from the callback URL.`)
	return nil
}

func loginWithToken(token string) error {
	client := api.NewClient(cfg.ServerURL, token)
	var resp api.AccountResponse
	if err := client.Get("/account", nil, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("invalid token: %s", apiErr.Message)
		}
		return fmt.Errorf("validating token: %w", err)
	}

	cfg.Token = token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", resp.User.Username, resp.User.ID)
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}
	return cmd.Start()
}
