package cmd

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagForce     bool
	flagRemoveAll bool
)

var rmCmd = &cobra.Command{
	Use:   "rm [photo]",
	Short: "Delete a photo, or every photo with --all",
	Long: `Delete photos from the server.

  vrcphotos rm VRChat_2024-01-31_21-05-44.123_1920x1080.png
  vrcphotos rm --all              Delete everything and disable sync
  vrcphotos rm --all --force      Skip confirmation

Deleted photos cannot be recovered.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if flagRemoveAll {
			if !confirm("Delete ALL photos and disable sync? This cannot be undone.") {
				fmt.Println("Cancelled.")
				return nil
			}
			var resp api.DeleteAllResponse
			if err := apiClient.Delete("/allphotos", nil, &resp); err != nil {
				return fmt.Errorf("deleting photos: %w", err)
			}
			if flagJSON {
				output.JSON(resp)
				return nil
			}
			fmt.Printf("Deleted %d photo(s). Sync is now disabled.\n", resp.Deleted)
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("specify a photo name or --all")
		}

		if !confirm(fmt.Sprintf("Delete %q? This cannot be undone.", args[0])) {
			fmt.Println("Cancelled.")
			return nil
		}

		var resp api.Response
		if err := apiClient.Delete("/photos", url.Values{"photo": {args[0]}}, &resp); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}

		fmt.Printf("Deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")
	rmCmd.Flags().BoolVar(&flagRemoveAll, "all", false, "Delete every photo and disable sync")
	rootCmd.AddCommand(rmCmd)
}

func confirm(prompt string) bool {
	if flagForce {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
