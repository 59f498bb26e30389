package cmd

import (
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current account, quota and share code",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.AccountResponse
		if err := apiClient.Get("/account", nil, &resp); err != nil {
			return fmt.Errorf("fetching account: %w", err)
		}

		if flagJSON {
			output.JSON(resp.User)
			return nil
		}

		output.AccountInfo(resp.User)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
