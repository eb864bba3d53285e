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
	"os"
	"os/signal"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iofs"
	"github.com/gnames/gntaxon/internal/iologger"
	app "github.com/gnames/gntaxon/pkg"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd creates the base command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gntaxon",
		Short:   "GNtaxon resolves taxon names and ids to canonical taxa",
		Long: `GNtaxon links raw taxon records (names with optional external ids)
to canonical taxa with external ids and lineages. Records are looked up in
an offline taxon cache and in GNverifier, GBIF, iNaturalist, EOL and
Wikidata, and are stored in a taxon graph.

The workflow:
  - ingest: add raw taxon records from a TSV file
  - resolve: link unresolved records to canonical taxa
  - export: write canonical taxa in the taxon cache layout

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNTAXON_*)
  3. Config file (~/.config/gntaxon/config.yaml)
  4. Built-in defaults

Nested fields use underscores (store.type becomes GNTAXON_STORE_TYPE).`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "gntaxon version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gntaxon")

	rootCmd.AddCommand(getIngestCmd())
	rootCmd.AddCommand(getResolveCmd())
	rootCmd.AddCommand(getExportCmd())
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	created, err := iofs.EnsureConfigFile(homeDir)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if created {
		gn.Info("Created default config <em>%s</em>", config.ConfigFilePath(homeDir))
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings, the log file created
	// above is kept
	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", config.ConfigFilePath(homeDir))
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	versionFlag(cmd)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupts cancel the running command at the next batch boundary.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := getRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("GNTAXON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Store configuration
	v.BindEnv("store.type", "GNTAXON_STORE_TYPE")
	v.BindEnv("store.sqlite_path", "GNTAXON_STORE_SQLITE_PATH")
	v.BindEnv("store.postgres.host", "GNTAXON_STORE_POSTGRES_HOST")
	v.BindEnv("store.postgres.port", "GNTAXON_STORE_POSTGRES_PORT")
	v.BindEnv("store.postgres.user", "GNTAXON_STORE_POSTGRES_USER")
	v.BindEnv("store.postgres.password", "GNTAXON_STORE_POSTGRES_PASSWORD")
	v.BindEnv("store.postgres.database", "GNTAXON_STORE_POSTGRES_DATABASE")
	v.BindEnv("store.postgres.ssl_mode", "GNTAXON_STORE_POSTGRES_SSL_MODE")
	v.BindEnv("store.neo4j.uri", "GNTAXON_STORE_NEO4J_URI")
	v.BindEnv("store.neo4j.user", "GNTAXON_STORE_NEO4J_USER")
	v.BindEnv("store.neo4j.password", "GNTAXON_STORE_NEO4J_PASSWORD")
	v.BindEnv("store.neo4j.database", "GNTAXON_STORE_NEO4J_DATABASE")

	// Cache configuration
	v.BindEnv("cache.taxon_path", "GNTAXON_CACHE_TAXON_PATH")
	v.BindEnv("cache.map_path", "GNTAXON_CACHE_MAP_PATH")

	// Web configuration
	v.BindEnv("web.timeout_sec", "GNTAXON_WEB_TIMEOUT_SEC")
	v.BindEnv("web.max_concurrent", "GNTAXON_WEB_MAX_CONCURRENT")
	v.BindEnv("web.retries", "GNTAXON_WEB_RETRIES")
	v.BindEnv("web.user_agent", "GNTAXON_WEB_USER_AGENT")
	v.BindEnv("web.gnverifier_url", "GNTAXON_WEB_GNVERIFIER_URL")
	v.BindEnv("web.gbif_url", "GNTAXON_WEB_GBIF_URL")
	v.BindEnv("web.inaturalist_url", "GNTAXON_WEB_INATURALIST_URL")
	v.BindEnv("web.eol_url", "GNTAXON_WEB_EOL_URL")
	v.BindEnv("web.wikidata_url", "GNTAXON_WEB_WIKIDATA_URL")

	// Resolve configuration
	v.BindEnv("resolve.batch_size", "GNTAXON_RESOLVE_BATCH_SIZE")
	v.BindEnv("resolve.corrections_path", "GNTAXON_RESOLVE_CORRECTIONS_PATH")
	v.BindEnv("resolve.progress_every", "GNTAXON_RESOLVE_PROGRESS_EVERY")
	v.BindEnv("resolve.progress_bar", "GNTAXON_RESOLVE_PROGRESS_BAR")
	v.BindEnv("resolve.metrics_path", "GNTAXON_RESOLVE_METRICS_PATH")

	// Log configuration
	v.BindEnv("log.level", "GNTAXON_LOG_LEVEL")
	v.BindEnv("log.format", "GNTAXON_LOG_FORMAT")
	v.BindEnv("log.destination", "GNTAXON_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "GNTAXON_JOBS_NUMBER")

	v.AutomaticEnv()
}
