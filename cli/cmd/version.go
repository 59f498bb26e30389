package cmd

import (
	"fmt"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/phaze-the-dumb/VRChat-Photo-Server/cli/cmd.Version=1.2.3"
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and server reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.Response
		serverErr := apiClient.Get("/status", nil, &resp)

		if flagJSON {
			type jsonOut struct {
				CLIVersion  string `json:"cliVersion"`
				Server      string `json:"server"`
				ServerOK    bool   `json:"serverOk"`
				ServerError string `json:"serverError,omitempty"`
			}
			out := jsonOut{CLIVersion: Version, Server: cfg.ServerURL, ServerOK: serverErr == nil && resp.OK}
			if serverErr != nil {
				out.ServerError = serverErr.Error()
			}
			output.JSON(out)
			return nil
		}

		fmt.Printf("CLI:     %s\n", Version)
		if serverErr != nil {
			fmt.Printf("Server:  %s (unreachable: %v)\n", cfg.ServerURL, serverErr)
			return nil
		}
		fmt.Printf("Server:  %s (ok)\n", cfg.ServerURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
