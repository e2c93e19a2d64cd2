package img2mosaic

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2mosaic/imageutil"
)

// TileImages holds tile images decoded once and scaled to the size they
// are drawn at. A path that could not be loaded is remembered as missing
// so it is not retried for every cell that uses it.
type TileImages struct {
	width, height int
	interp        imageutil.Interpolation

	mu     sync.RWMutex
	images map[string]*imageutil.RGBAImage

	hits, misses int
}

// NewTileImages creates an empty cache for tiles drawn at width x height
// and scaled with interp.
func NewTileImages(width, height int, interp imageutil.Interpolation) *TileImages {
	return &TileImages{
		width:  width,
		height: height,
		interp: interp,
		images: make(map[string]*imageutil.RGBAImage),
	}
}

// Preload decodes and scales every distinct path with at most workers
// concurrent decodes. Unreadable images are logged and recorded as
// missing; only cancellation of ctx is returned as an error.
func (c *TileImages) Preload(ctx context.Context, paths []string, workers int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if seen[path] || c.loaded(path) {
			continue
		}
		seen[path] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.store(path, c.load(path, logger))
			return nil
		})
	}
	return g.Wait()
}

// Get returns the scaled image for path, loading it on first use. The
// boolean is false when the image is missing or undecodable.
func (c *TileImages) Get(path string, logger *slog.Logger) (*imageutil.RGBAImage, bool) {
	c.mu.RLock()
	img, exists := c.images[path]
	c.mu.RUnlock()
	if exists {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return img, img != nil
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	img = c.load(path, logger)
	c.store(path, img)
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return img, img != nil
}

// Stats returns cache hits and misses counted by Get.
func (c *TileImages) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of paths held, missing ones included.
func (c *TileImages) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func (c *TileImages) load(path string, logger *slog.Logger) *imageutil.RGBAImage {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		logger.Warn("tile image unavailable, using its average color", "path", path, "err", err)
		return nil
	}
	if img.Width() == c.width && img.Height() == c.height {
		return img
	}
	return imageutil.Resize(img, c.width, c.height, c.interp)
}

func (c *TileImages) loaded(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.images[path]
	return ok
}

func (c *TileImages) store(path string, img *imageutil.RGBAImage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[path] = img
}
