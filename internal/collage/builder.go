package collage

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is a built, encoded collage that has not been published yet.
type Result struct {
	Mode   ExportMode
	Grid   GridSpec
	Width  int
	Height int
	PNG    []byte
}

// Builder runs the collage pipeline for one export mode at a time.
// It holds no per-request state and is safe for concurrent use.
type Builder struct {
	policy   Policy
	workers  int
	logger   *slog.Logger
	progress func()
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWorkers bounds the number of images decoded or resized at once.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger used for skipped assets.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each tile is rendered or skipped.
func WithProgress(fn func()) BuilderOption {
	return func(b *Builder) {
		b.progress = fn
	}
}

// NewBuilder creates a Builder. Zero fields of policy take their defaults.
func NewBuilder(policy Policy, opts ...BuilderOption) *Builder {
	b := &Builder{
		policy:  policy.withDefaults(),
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the effective policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// ReadAssets reads the dimensions of every path concurrently. Unreadable
// images are logged and left out; the returned refs keep their request index.
func (b *Builder) ReadAssets(ctx context.Context, paths []string) ([]AssetRef, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	refs := make([]AssetRef, len(paths))
	ok := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ref, err := ReadAsset(i, p)
			if err != nil {
				b.logger.Warn("skipping unreadable image", "path", p, "error", err)
				return nil
			}
			refs[i], ok[i] = ref, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets := make([]AssetRef, 0, len(paths))
	for i := range refs {
		if ok[i] {
			assets = append(assets, refs[i])
		}
	}
	if len(assets) == 0 {
		return nil, ErrNoValidAssets
	}
	return assets, nil
}

// Build composes assets into a collage for mode. count is the number of
// requested images; cells of missing or failed assets stay background.
func (b *Builder) Build(ctx context.Context, assets []AssetRef, count, cols int, mode ExportMode) (*Result, error) {
	if len(assets) == 0 {
		return nil, ErrNoValidAssets
	}
	for _, a := range assets {
		count = max(count, a.Index+1)
	}

	if err := b.policy.CheckSources(assets); err != nil {
		return nil, err
	}
	tileW, tileH := b.policy.TileSize(assets, mode)
	if err := b.policy.CheckCanvas(count, cols, tileW, tileH); err != nil {
		return nil, err
	}
	grid := PlanGrid(count, cols, tileW, tileH)

	tiles, err := b.renderTiles(ctx, grid, assets)
	if err != nil {
		return nil, err
	}

	bg := image.NewUniform(b.policy.Background)
	var out image.Image = Composite(grid, tiles, bg)
	if mode == ModeLineProtocol {
		out = NormalizeToSquare(out, b.policy.LineProtocolSide, bg)
	}

	data, err := EncodePNG(out, b.policy.Compression)
	if err != nil {
		return nil, fmt.Errorf("%s collage: %w", mode, err)
	}

	size := out.Bounds().Size()
	return &Result{
		Mode:   mode,
		Grid:   grid,
		Width:  size.X,
		Height: size.Y,
		PNG:    data,
	}, nil
}

// renderTiles renders every asset in parallel. Tiles are stored by asset
// position so scheduling order never changes which cell a tile lands in.
func (b *Builder) renderTiles(ctx context.Context, grid GridSpec, assets []AssetRef) ([]PlacedTile, error) {
	tiles := make([]PlacedTile, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, a := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer b.tick()

			px, err := RenderTile(a, grid.TileWidth, grid.TileHeight)
			if err != nil {
				b.logger.Warn("skipping image that failed to render", "path", a.Path, "error", err)
				return nil
			}
			tiles[i] = grid.Place(a.Index, px)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rendered := 0
	for _, t := range tiles {
		if t.Pixels != nil {
			rendered++
		}
	}
	if rendered == 0 {
		return nil, ErrNoValidAssets
	}
	return tiles, nil
}

func (b *Builder) tick() {
	if b.progress != nil {
		b.progress()
	}
}
