package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/config"
	"github.com/kozaktomas/image-collage/internal/constants"
	"github.com/kozaktomas/image-collage/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Build collages from images dropped into a folder",
	Long: `Watch a folder for new images. When no new image has arrived for the
quiet period, every image in the folder is built into an original and a
line-protocol collage, and the images are deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Int("cols", constants.DefaultColumns, "Number of grid columns")
	watchCmd.Flags().Duration("quiet", constants.DefaultWatchQuietPeriod, "Time without new images before a batch is built")
}

func runWatch(cmd *cobra.Command, args []string) error {
	inbox := args[0]
	cols := mustGetInt(cmd, "cols")
	quiet := mustGetDuration(cmd, "quiet")

	info, err := os.Stat(inbox)
	if err != nil {
		return fmt.Errorf("cannot access folder %s: %w", inbox, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", inbox)
	}

	cfg := config.Load()
	service, store, _, err := setupService(cfg, false)
	if err != nil {
		return err
	}

	w := watch.New(inbox, cols, quiet, service, nil)
	w.OnBatch = func(resp *collage.Response, err error) {
		if err != nil {
			fmt.Printf("Batch failed: %v\n", err)
			return
		}
		printArtifacts(resp, store.Dirs().Output)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (press Ctrl+C to stop)\n", inbox)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
