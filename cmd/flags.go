package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/gnames/gntaxon/internal/iostore/pgstore"
	app "github.com/gnames/gntaxon/pkg"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command) []config.Option

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", app.Version, app.Build)
		os.Exit(0)
	}
}

// storeFlag adds --store to a command.
func storeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("store", "s", "",
		"store type: memory, sqlite, postgres, neo4j")
}

func storeOpts(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("store") {
		return nil
	}
	s, _ := cmd.Flags().GetString("store")
	return []config.Option{config.OptStoreType(s)}
}

func jobsOpts(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("jobs") {
		return nil
	}
	i, _ := cmd.Flags().GetInt("jobs")
	return []config.Option{config.OptJobsNumber(i)}
}

func batchSizeOpts(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("batch-size") {
		return nil
	}
	i, _ := cmd.Flags().GetInt("batch-size")
	return []config.Option{config.OptResolveBatchSize(i)}
}

func cacheOnlyOpts(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("cache-only") {
		return nil
	}
	b, _ := cmd.Flags().GetBool("cache-only")
	return []config.Option{config.OptResolveCacheOnly(b)}
}

func progressBarOpts(cmd *cobra.Command) []config.Option {
	if !cmd.Flags().Changed("progress-bar") {
		return nil
	}
	b, _ := cmd.Flags().GetBool("progress-bar")
	return []config.Option{config.OptResolveProgressBar(b)}
}

// applyFlags updates the configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, flags ...funcFlag) {
	var res []config.Option
	for _, f := range flags {
		res = append(res, f(cmd)...)
	}
	if len(res) > 0 {
		cfg.Update(res)
	}
}

// printError shows a detailed help message for store connection errors
// and a one-line message for everything else.
func printError(err error) {
	var connErr pgstore.ConnectionError
	if errors.As(err, &connErr) {
		gnlib.PrintUserMessage(err)
		return
	}
	gn.PrintErrorMessage(err)
}
