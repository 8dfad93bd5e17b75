package cmd

import (
	"fmt"
	"log/slog"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/config"
	"github.com/kozaktomas/image-collage/internal/storage"
)

// setupService bootstraps the store directories and wires the collage service.
// resolve restricts request paths to the upload store.
func setupService(cfg *config.Config, resolve bool, opts ...collage.BuilderOption) (*collage.Service, *storage.Store, collage.Policy, error) {
	policy, err := cfg.Engine.Policy()
	if err != nil {
		return nil, nil, collage.Policy{}, fmt.Errorf("invalid engine config: %w", err)
	}

	store, err := storage.Bootstrap(storage.Dirs{
		Uploads: cfg.Storage.UploadDir,
		Output:  cfg.Storage.OutputDir,
		Preview: cfg.Storage.PreviewDir,
	}, slog.Default())
	if err != nil {
		return nil, nil, collage.Policy{}, fmt.Errorf("preparing storage: %w", err)
	}

	opts = append([]collage.BuilderOption{collage.WithWorkers(cfg.Engine.Workers)}, opts...)
	builder := collage.NewBuilder(policy, opts...)

	var resolver collage.PathResolver
	if resolve {
		resolver = store
	}
	return collage.NewService(builder, store, resolver, slog.Default()), store, builder.Policy(), nil
}

// printArtifacts prints published artifacts for the user.
func printArtifacts(resp *collage.Response, outputDir string) {
	for _, a := range resp.Artifacts {
		fmt.Printf("%-14s %s/%s  %dx%d  (%dx%d grid, %dx%d tiles)\n",
			a.Mode.String()+":", outputDir, a.Filename, a.Width, a.Height,
			a.Columns, a.Rows, a.TileWidth, a.TileHeight)
	}
}
