package cmd

import (
	"fmt"
	"net/url"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block [account-id]",
	Short: "Block an account, or list blocked accounts",
	Long: `A blocked account can no longer find you by share code or see
photos you shared with it.

  vrcphotos block                 List blocked accounts
  vrcphotos block usr_abc         Block an account`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if len(args) == 0 {
			var resp api.BlocksResponse
			if err := apiClient.Get("/blocks", nil, &resp); err != nil {
				return fmt.Errorf("listing blocks: %w", err)
			}
			if flagJSON {
				output.JSON(resp.Blocked)
				return nil
			}
			if len(resp.Blocked) == 0 {
				fmt.Println("No blocked accounts.")
			}
			for _, id := range resp.Blocked {
				fmt.Println(id)
			}
			return nil
		}

		var resp api.Response
		if err := apiClient.Put("/blocks", url.Values{"user": {args[0]}}, nil, &resp); err != nil {
			return fmt.Errorf("blocking: %w", err)
		}
		fmt.Printf("Blocked %s\n", args[0])
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <account-id>",
	Short: "Unblock an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response
		if err := apiClient.Delete("/blocks", url.Values{"user": {args[0]}}, &resp); err != nil {
			return fmt.Errorf("unblocking: %w", err)
		}
		fmt.Printf("Unblocked %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
}
