package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/config"
	"github.com/spf13/cobra"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the effective engine policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		policy, err := cfg.Engine.Policy()
		if err != nil {
			return fmt.Errorf("invalid engine config: %w", err)
		}
		printVersion(os.Stdout, policy, cfg.Engine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes build metadata followed by the settings every
// collage is built with, so two binaries can be compared at a glance.
func printVersion(w io.Writer, policy collage.Policy, engine config.EngineConfig) {
	fmt.Fprintf(w, "collage %s (commit %s, built %s)\n", Version, CommitSHA, BuildDate)
	fmt.Fprintf(w, "  Original tiles:     >= %dx%d px\n", policy.MinTileSize, policy.MinTileSize)
	fmt.Fprintf(w, "  Line-protocol size: %dx%d px\n", policy.LineProtocolSide, policy.LineProtocolSide)
	fmt.Fprintf(w, "  Pixel budget:       %d px\n", policy.MaxCanvasPixels)
	fmt.Fprintf(w, "  PNG compression:    %s\n", orDefault(engine.PNGCompression))
	fmt.Fprintf(w, "  Background:         %s\n", engine.Background)
	fmt.Fprintf(w, "  Workers:            %d\n", engine.Workers)
	fmt.Fprintf(w, "  Input formats:      %s\n", collage.SupportedFormats())
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}
