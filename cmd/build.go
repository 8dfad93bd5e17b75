package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/config"
	"github.com/kozaktomas/image-collage/internal/watch"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <path> [path...]",
	Short: "Build collages from local images",
	Long: `Build collages from local image files or folders and publish them to
the output and preview directories.

Folders are expanded to the images they contain (non-recursive unless -r
is given), sorted by name. Images keep their argument order in the grid.
Source files are left in place unless --remove-sources is set.

Example:
  collage build --cols 3 a.png b.png c.jpg
  collage build --cols 4 --mode line-protocol /path/to/photos
  collage build -r --remove-sources /path/to/inbox`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Int("cols", 1, "Number of grid columns")
	buildCmd.Flags().String("mode", "dual", "Export mode: dual, original or line-protocol")
	buildCmd.Flags().Bool("remove-sources", false, "Delete source images after publishing")
	buildCmd.Flags().BoolP("recursive", "r", false, "Search for images recursively in subdirectories")
}

// collectImages expands folder arguments into the images they contain.
func collectImages(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		if recursive {
			err := filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && watch.IsImageFile(d.Name()) {
					paths = append(paths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", arg, err)
			}
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && watch.IsImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

// buildRequest converts the --mode flag into a tagged request.
func buildRequest(mode string, paths []string, cols int, removeSources bool) (collage.Request, error) {
	req := collage.Request{
		Variant:     collage.VariantDual,
		ImagePaths:  paths,
		Columns:     cols,
		KeepSources: !removeSources,
	}
	if mode == "dual" {
		return req, nil
	}

	m, err := collage.ParseExportMode(mode)
	if err != nil || mode == "" {
		return req, fmt.Errorf("invalid --mode %q (expected dual, original or line-protocol)", mode)
	}
	req.Variant = collage.VariantSingle
	req.Mode = m
	return req, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cols := mustGetInt(cmd, "cols")
	mode := mustGetString(cmd, "mode")
	removeSources := mustGetBool(cmd, "remove-sources")
	recursive := mustGetBool(cmd, "recursive")

	paths, err := collectImages(args, recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No image files found.")
		return nil
	}

	req, err := buildRequest(mode, paths, cols, removeSources)
	if err != nil {
		return err
	}
	modes, _ := req.Modes()

	bar := progressbar.NewOptions(len(paths)*len(modes),
		progressbar.OptionSetDescription("Rendering tiles"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tiles"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	cfg := config.Load()
	service, store, _, err := setupService(cfg, false, collage.WithProgress(func() { bar.Add(1) }))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Building collage from %d image(s) in %d column(s)\n", len(paths), collage.NormalizeColumns(cols))
	resp, err := service.Create(ctx, req)
	bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("building collage: %w", err)
	}

	printArtifacts(resp, store.Dirs().Output)
	return nil
}
