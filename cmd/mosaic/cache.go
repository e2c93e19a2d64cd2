package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wbrown/img2mosaic"
)

var cacheWorkers int

func init() {
	cacheCmd.Flags().IntVar(&cacheWorkers, "workers", 0, "Concurrent image decodes (0 = one per CPU)")
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache [dir]",
	Short: "Scan a tile directory and rewrite its color cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		start := time.Now()
		catalog, err := img2mosaic.ScanDirectory(cmd.Context(), dir,
			img2mosaic.ScanOptions{Workers: cacheWorkers, Logger: logger})
		if err != nil {
			return err
		}
		path := filepath.Join(dir, img2mosaic.CacheFileName)
		if err := catalog.SaveFile(path); err != nil {
			return err
		}
		logger.Info("catalog cache written",
			"path", path, "tiles", len(catalog), "elapsed", time.Since(start))
		return nil
	},
}
