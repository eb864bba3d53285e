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
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/ioindex"
	"github.com/gnames/gntaxon/internal/iostore"
	"github.com/spf13/cobra"
)

// getIngestCmd returns the ingest command.
func getIngestCmd() *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest <file.tsv[.gz]>...",
		Short: "Add raw taxon records from TSV files",
		Long: `Add raw taxon records to the taxon store.

Files are tab-separated with a header line and may be gzipped. Taxa are
read from the first layout found in the header:
  - name, externalId
  - providedTaxonName, providedTaxonId
  - taxonName, taxonId
  - sourceTaxonName, sourceTaxonId, targetTaxonName, targetTaxonId
    (interaction files, both taxa of a row are added)

Records already in the store are skipped, so ingesting the same file
twice changes nothing.

Examples:
  gntaxon ingest interactions.tsv.gz
  gntaxon ingest -s postgres names.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, storeOpts)
			err := runIngest(cmd.Context(), args)
			if err != nil {
				printError(err)
			}
			return err
		},
	}
	storeFlag(ingestCmd)
	return ingestCmd
}

func runIngest(ctx context.Context, paths []string) error {
	store, err := iostore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	idx := ioindex.New(store)

	for _, path := range paths {
		stats, err := idx.ImportTSV(ctx, path, 0)
		if err != nil {
			return err
		}
		slog.Info("File ingested",
			"file", path,
			"records", stats.Read,
			"added", stats.Added,
		)
		gn.Info("Ingested <em>%s</em>: %s records, %s new",
			path,
			humanize.Comma(int64(stats.Read)),
			humanize.Comma(int64(stats.Added)),
		)
	}

	total, err := idx.CountOriginal(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Raw taxon records in %s: %s\n",
		iostore.Target(cfg), humanize.Comma(int64(total)))
	return nil
}
