package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/image-collage/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "collage",
	Short: "Arrange images into grid collages",
	Long: `Collage arranges a set of images into a grid and publishes two PNGs:
a full-resolution tiled composite and a 240x240 square for fixed-size
line-protocol displays. Run it as a web service or build collages
directly from local files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	level := config.LogConfig{Level: os.Getenv("COLLAGE_LOG_LEVEL")}.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
