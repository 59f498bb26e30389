package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/api"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/cli/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagWorkers int
	flagSaveDir bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload a photo or every VRChat photo in a directory",
	Long: `Upload a single PNG or walk a directory for VRChat screenshots.

  vrcphotos upload VRChat_2024-01-31_21-05-44.123_1920x1080.png
  vrcphotos upload ~/Pictures/VRChat              Walks subdirectories
  vrcphotos upload                                Uses the saved photo directory

Photos already on the server are skipped. The run stops once the
storage quota is reached.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 4, "Number of concurrent upload workers (for directories)")
	uploadCmd.Flags().BoolVar(&flagSaveDir, "save", false, "Remember the directory for later runs")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	localPath := cfg.PhotoDir
	if len(args) > 0 {
		localPath = args[0]
	}
	if localPath == "" {
		return errors.New("no path given and no photo directory saved")
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	if !info.IsDir() {
		return uploadSingleFile(localPath)
	}

	if flagSaveDir {
		abs, err := filepath.Abs(localPath)
		if err != nil {
			return err
		}
		cfg.PhotoDir = abs
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}
	return uploadDirectory(localPath)
}

func uploadSingleFile(path string) error {
	resp, err := apiClient.UploadPhoto(path)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}

	if flagJSON {
		output.JSON(resp)
		return nil
	}

	if resp.Warning != "" {
		fmt.Printf("Skipped %s: %s\n", filepath.Base(path), resp.Warning)
		return nil
	}
	fmt.Printf("Uploaded %s (%s)\n", filepath.Base(path), output.FormatSize(resp.Size))
	return nil
}

// isPhotoCandidate filters out files the server would reject by name.
func isPhotoCandidate(name string) bool {
	return strings.HasPrefix(name, "VRChat_") && strings.HasSuffix(name, ".png")
}

// isQuotaError reports whether the server refused an upload for a reason
// that applies to every remaining file.
func isQuotaError(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

func uploadDirectory(dirPath string) error {
	jobs := make(chan string, 64)
	stop := make(chan struct{})
	var stopOnce sync.Once

	var uploaded, skipped, failed atomic.Int64
	var walkErr error

	go func() {
		defer close(jobs)
		walkErr = filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isPhotoCandidate(d.Name()) {
				return nil
			}
			select {
			case jobs <- path:
				return nil
			case <-stop:
				return filepath.SkipAll
			}
		})
	}()

	workers := flagWorkers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-stop:
					continue
				default:
				}
				name := filepath.Base(path)
				resp, err := apiClient.UploadPhoto(path)
				switch {
				case err != nil && isQuotaError(err):
					fmt.Fprintf(os.Stderr, "  Stopped: %s: %v\n", name, err)
					failed.Add(1)
					stopOnce.Do(func() { close(stop) })
				case err != nil:
					fmt.Fprintf(os.Stderr, "  Failed: %s: %v\n", name, err)
					failed.Add(1)
				case resp.Warning != "":
					skipped.Add(1)
				default:
					fmt.Printf("  Uploaded: %s (%s)\n", name, output.FormatSize(resp.Size))
					uploaded.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	if walkErr != nil {
		return fmt.Errorf("walking directory: %w", walkErr)
	}

	fmt.Printf("\nDone: %d uploaded, %d already synced, %d failed\n", uploaded.Load(), skipped.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d photo(s) failed to upload", failed.Load())
	}
	return nil
}
