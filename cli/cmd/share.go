package cmd

import (
	"fmt"
	"net/url"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share <share-code> <photo>",
	Short: "Share a photo with the account behind a share code",
	Long: `Share one of your photos with another account. Ask them for the
share code shown by "vrcphotos whoami".

  vrcphotos share 12345678 VRChat_2024-01-31_21-05-44.123_1920x1080.png`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		code, photo := args[0], args[1]

		var who api.ProfileResponse
		if err := apiClient.Get("/user/byCode", url.Values{"code": {code}}, &who); err != nil {
			return fmt.Errorf("looking up share code: %w", err)
		}

		var resp api.Response
		if err := apiClient.Get("/share", url.Values{"code": {code}, "photo": {photo}}, &resp); err != nil {
			return fmt.Errorf("sharing: %w", err)
		}

		if flagJSON {
			output.JSON(who.User)
			return nil
		}

		fmt.Printf("Shared %s with %s\n", photo, who.User.Username)
		return nil
	},
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <share-code> <photo>",
	Short: "Stop sharing a photo with an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response
		if err := apiClient.Delete("/share", url.Values{"code": {args[0]}, "photo": {args[1]}}, &resp); err != nil {
			return fmt.Errorf("revoking share: %w", err)
		}

		fmt.Printf("Stopped sharing %s\n", args[1])
		return nil
	},
}

var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List photos other accounts have shared with you",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.SharesResponse
		if err := apiClient.Get("/shares", nil, &resp); err != nil {
			return fmt.Errorf("listing shares: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Shares)
			return nil
		}

		output.ShareTable(resp.Shares)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(unshareCmd)
	rootCmd.AddCommand(sharedCmd)
}
