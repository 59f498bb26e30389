package cmd

import (
	"fmt"
	"net/url"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [photo]",
	Short: "List synced photos or check whether one exists",
	Long: `List every photo stored for your account, or check a single name.

  vrcphotos ls
  vrcphotos ls VRChat_2024-01-31_21-05-44.123_1920x1080.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if len(args) == 1 {
			var resp api.ExistsResponse
			if err := apiClient.Get("/photos/exists", url.Values{"photo": {args[0]}}, &resp); err != nil {
				return fmt.Errorf("checking photo: %w", err)
			}
			if flagJSON {
				output.JSON(map[string]bool{"exists": resp.Exists})
				return nil
			}
			if resp.Exists {
				fmt.Printf("%s exists\n", args[0])
			} else {
				fmt.Printf("%s not found\n", args[0])
			}
			return nil
		}

		var resp api.FilesResponse
		if err := apiClient.Get("/photos/exists", nil, &resp); err != nil {
			return fmt.Errorf("listing photos: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Files)
			return nil
		}

		output.PhotoTable(resp.Files)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
