package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagOutput string
	flagOwner  string
	flagAll    bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [photo] [local-dir]",
	Short: "Download photos",
	Long: `Download one of your photos, a photo shared with you, or all of yours.

  vrcphotos download VRChat_2024-01-31_21-05-44.123_1920x1080.png
  vrcphotos download VRChat_...png ./out --owner usr_abc     Shared with you
  vrcphotos download --all ./backup                          Every photo you own`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (overrides default naming)")
	downloadCmd.Flags().StringVar(&flagOwner, "owner", "", "Account id of the owner for photos shared with you")
	downloadCmd.Flags().BoolVar(&flagAll, "all", false, "Download every photo you own")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	if flagAll {
		destDir := "."
		if len(args) > 0 {
			destDir = args[0]
		}
		return downloadAll(destDir)
	}

	if len(args) == 0 {
		return fmt.Errorf("specify a photo name or --all")
	}

	destDir := "."
	if len(args) > 1 {
		destDir = args[1]
	}
	dest := filepath.Join(destDir, args[0])
	if flagOutput != "" {
		dest = flagOutput
	}
	return downloadPhoto(args[0], flagOwner, dest)
}

func downloadPhoto(photo, owner, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := "/photos"
	params := url.Values{"photo": {photo}}
	if owner != "" {
		path = "/shares/photo"
		params.Set("owner", owner)
	}

	n, err := apiClient.DownloadToFile(path, params, dest)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", photo, err)
	}

	fmt.Printf("Downloaded %s (%s) to %s\n", photo, output.FormatSize(n), dest)
	return nil
}

func downloadAll(destDir string) error {
	var resp api.FilesResponse
	if err := apiClient.Get("/photos/exists", nil, &resp); err != nil {
		return fmt.Errorf("listing photos: %w", err)
	}

	var failed int
	for _, name := range resp.Files {
		dest := filepath.Join(destDir, name)
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := downloadPhoto(name, "", dest); err != nil {
			fmt.Fprintf(os.Stderr, "  Failed: %v\n", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d photo(s) failed to download", failed)
	}
	return nil
}
