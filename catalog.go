package img2mosaic

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2mosaic/imageutil"
)

// CacheFileName is the catalog cache written inside a tile directory.
const CacheFileName = "imageCache.csv"

// Catalog is the ordered list of candidate tiles. Order matters: it is
// the insertion order of the match tree.
type Catalog []Tile

// ReadCatalog parses cache rows of the form id,r,g,b,path. Rows whose
// path was written without quoting and contains commas are rejoined.
// A malformed row fails the whole read with a ConfigError naming its
// line.
func ReadCatalog(r io.Reader) (Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var catalog Catalog
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ConfigError{Field: "catalog", Err: err}
		}
		line, _ := cr.FieldPos(0)
		if len(fields) < 5 {
			return nil, configErrorf("catalog",
				"line %d: want id,r,g,b,path, got %d fields", line, len(fields))
		}

		var c [3]uint8
		for i := range c {
			v, err := strconv.ParseUint(strings.TrimSpace(fields[i+1]), 10, 8)
			if err != nil {
				return nil, configErrorf("catalog",
					"line %d: bad color component %q: %w", line, fields[i+1], err)
			}
			c[i] = uint8(v)
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, configErrorf("catalog", "line %d: empty id", line)
		}
		path := strings.Join(fields[4:], ",")
		catalog = append(catalog, NewTile(id, path, RGB{R: c[0], G: c[1], B: c[2]}))
	}
	return catalog, nil
}

// LoadCatalogFile reads a catalog cache from path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Field: "catalog", Err: err}
	}
	defer f.Close()

	catalog, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return catalog, nil
}

// Write emits the catalog as CSV rows id,r,g,b,path.
func (c Catalog) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, t := range c {
		record := []string{
			t.ID,
			strconv.Itoa(int(t.Color.R)),
			strconv.Itoa(int(t.Color.G)),
			strconv.Itoa(int(t.Color.B)),
			t.Path,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile writes the catalog to path, replacing any previous file.
func (c Catalog) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create catalog cache: %w", err)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ScanOptions tunes ScanDirectory.
type ScanOptions struct {
	// Workers bounds concurrent decodes. Zero means GOMAXPROCS.
	Workers int
	// Logger receives a warning per skipped file. Nil discards.
	Logger *slog.Logger
}

// ScanDirectory decodes every regular file in dir, following symlinks,
// and summarizes it as a tile whose id is the file's position in the
// sorted listing. Files that do not decode as images are skipped with a
// warning, leaving a gap in the ids. The result is in listing order.
func ScanDirectory(ctx context.Context, dir string, opts ScanOptions) (Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigError{Field: "dir", Err: err}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var files []string
	for _, e := range entries {
		if e.Name() == CacheFileName || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		// Stat follows symlinks so linked images count as tiles.
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("skipping unreadable entry", "path", filepath.Join(dir, e.Name()), "err", err)
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, e.Name())
		}
	}

	found := make([]*Tile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			img, err := imageutil.LoadImage(path)
			if err != nil {
				logger.Warn("skipping unreadable tile", "path", path, "err", err)
				return nil
			}
			tile := NewTile(strconv.Itoa(i), path, rgbFromImageutil(img.Average()))
			found[i] = &tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := make(Catalog, 0, len(found))
	for _, t := range found {
		if t != nil {
			catalog = append(catalog, *t)
		}
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("scan %s: %w", dir, ErrEmptyCatalog)
	}
	logger.Debug("scanned tile directory", "dir", dir, "files", len(files), "tiles", len(catalog))
	return catalog, nil
}

// LoadOrScan returns the catalog cached in dir, scanning the directory
// and rewriting the cache when the cache is missing or rebuild is set.
func LoadOrScan(ctx context.Context, dir string, rebuild bool, opts ScanOptions) (Catalog, error) {
	cachePath := filepath.Join(dir, CacheFileName)
	if !rebuild {
		catalog, err := LoadCatalogFile(cachePath)
		switch {
		case err == nil:
			return catalog, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	catalog, err := ScanDirectory(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	if err := catalog.SaveFile(cachePath); err != nil {
		return nil, err
	}
	return catalog, nil
}
