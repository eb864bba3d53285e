/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/internal/iostore"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/spf13/cobra"
)

// Default names of exported files in the cache directory.
const (
	exportTaxaFile = "taxonCache.tsv.gz"
	exportMapFile  = "taxonMap.tsv.gz"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [taxa.tsv.gz] [map.tsv.gz]",
		Short: "Write canonical taxa in the taxon cache layout",
		Long: `Export canonical taxa with external ids and the mapping of resolved
records to them. The files have the layout of the offline taxon cache, so
they can be used as cache.taxon_path and cache.map_path of another run.

Without arguments files are written to ~/.cache/gntaxon. File names
ending with ".gz" are compressed.

Examples:
  gntaxon export
  gntaxon export taxa.tsv map.tsv`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, storeOpts)
			taxaPath, mapPath := exportPaths(cfg, args)
			err := runExport(cmd.Context(), taxaPath, mapPath)
			if err != nil {
				printError(err)
			}
			return err
		},
	}
	storeFlag(exportCmd)
	return exportCmd
}

func exportPaths(cfg *config.Config, args []string) (string, string) {
	dir := config.CacheDir(cfg.HomeDir)
	res := []string{
		filepath.Join(dir, exportTaxaFile),
		filepath.Join(dir, exportMapFile),
	}
	copy(res, args)
	return res[0], res[1]
}

func runExport(ctx context.Context, taxaPath, mapPath string) error {
	store, err := iostore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := ioindex.New(store).ExportTaxa(ctx, taxaPath, mapPath)
	if err != nil {
		return err
	}
	gn.Info("Exported <em>%s</em> taxa to %s", humanize.Comma(int64(stats.Taxa)), taxaPath)
	gn.Info("Exported <em>%s</em> aliases to %s", humanize.Comma(int64(stats.Aliases)), mapPath)
	return nil
}
