package cmd

import (
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/config"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg.PhotoDir == "" {
			err = config.Clear()
		} else {
			cfg.Token = ""
			err = config.Save(cfg)
		}
		if err != nil {
			return fmt.Errorf("clearing credentials: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
