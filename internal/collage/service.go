package collage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Variant tags the shape of a build request.
type Variant string

const (
	// VariantDual always produces both an original and a line-protocol collage.
	VariantDual Variant = "dual"
	// VariantSingle produces one collage in the caller's chosen mode.
	VariantSingle Variant = "single"
)

// Request is a build request over previously uploaded images.
type Request struct {
	Variant    Variant
	Mode       ExportMode // VariantSingle only
	ImagePaths []string
	Columns    int
	// KeepSources leaves the source images in place after publishing.
	KeepSources bool
}

// Modes returns the export modes the request produces, in publish order.
func (r Request) Modes() ([]ExportMode, error) {
	switch r.Variant {
	case VariantDual, "":
		return []ExportMode{ModeOriginal, ModeLineProtocol}, nil
	case VariantSingle:
		return []ExportMode{r.Mode}, nil
	}
	return nil, fmt.Errorf("unknown request variant %q", r.Variant)
}

// Response lists the published artifacts in the order of Request.Modes.
type Response struct {
	Variant   Variant
	Artifacts []Artifact
}

// Artifact returns the artifact published for mode.
func (r *Response) Artifact(mode ExportMode) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Mode == mode {
			return a, true
		}
	}
	return Artifact{}, false
}

// Publisher persists encoded collages and disposes of their sources.
type Publisher interface {
	// Publish stores data under a unique name derived from tag and at,
	// and returns that name.
	Publish(ctx context.Context, data []byte, tag string, at time.Time) (string, error)
	// RemoveSources deletes source images, logging failures.
	RemoveSources(paths []string)
}

// PathResolver maps a client-supplied path to a trusted local path.
type PathResolver interface {
	Resolve(path string) (string, error)
}

// Service runs build requests end to end.
type Service struct {
	builder   *Builder
	publisher Publisher
	resolver  PathResolver
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service. resolver may be nil to accept paths as given.
func NewService(b *Builder, p Publisher, resolver PathResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		builder:   b,
		publisher: p,
		resolver:  resolver,
		logger:    logger,
		now:       time.Now,
	}
}

// Create builds and publishes the collages for req. Nothing is published
// unless every requested mode builds and encodes successfully.
func (s *Service) Create(ctx context.Context, req Request) (*Response, error) {
	if len(req.ImagePaths) == 0 {
		return nil, ErrNoInput
	}
	modes, err := req.Modes()
	if err != nil {
		return nil, err
	}

	paths, err := s.resolvePaths(req.ImagePaths)
	if err != nil {
		return nil, err
	}
	cols := NormalizeColumns(req.Columns)

	assets, err := s.builder.ReadAssets(ctx, paths)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(modes))
	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			res, err := s.builder.Build(gctx, assets, len(paths), cols, mode)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	at := s.now()
	resp := &Response{Variant: req.Variant, Artifacts: make([]Artifact, 0, len(results))}
	if resp.Variant == "" {
		resp.Variant = VariantDual
	}
	for _, res := range results {
		name, err := s.publisher.Publish(ctx, res.PNG, res.Mode.String(), at)
		if err != nil {
			return nil, fmt.Errorf("%w: %s collage: %w", ErrPersistFailed, res.Mode, err)
		}
		s.logger.Info("published collage", "file", name, "mode", res.Mode.String(),
			"width", res.Width, "height", res.Height, "cols", res.Grid.Columns, "rows", res.Grid.Rows)
		resp.Artifacts = append(resp.Artifacts, Artifact{
			Mode:       res.Mode,
			Filename:   name,
			Width:      res.Width,
			Height:     res.Height,
			Columns:    res.Grid.Columns,
			Rows:       res.Grid.Rows,
			TileWidth:  res.Grid.TileWidth,
			TileHeight: res.Grid.TileHeight,
		})
	}

	if !req.KeepSources {
		s.publisher.RemoveSources(paths)
	}
	return resp, nil
}

func (s *Service) resolvePaths(in []string) ([]string, error) {
	if s.resolver == nil {
		return in, nil
	}
	out := make([]string, len(in))
	for i, p := range in {
		resolved, err := s.resolver.Resolve(p)
		if err != nil {
			if errors.Is(err, ErrInvalidPath) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPath, p, err)
		}
		out[i] = resolved
	}
	return out, nil
}
