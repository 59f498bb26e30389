package cmd

import (
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:       "sync <enable|disable>",
	Short:     "Turn photo sync on or off for your account",
	Long:      "Uploads are refused while sync is disabled. Deleting all photos also disables sync.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"enable", "disable"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var enable bool
		switch args[0] {
		case "enable":
			enable = true
		case "disable":
		default:
			return fmt.Errorf("unknown sync mode %q, use enable or disable", args[0])
		}

		var resp api.SettingsResponse
		if err := apiClient.Put("/account/settings", nil, map[string]bool{"enableSync": enable}, &resp); err != nil {
			return fmt.Errorf("updating settings: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Settings)
			return nil
		}

		fmt.Printf("Sync %sd\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
