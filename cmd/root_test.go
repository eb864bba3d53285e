package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gnames/gntaxon/internal/iofs"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetRootCmd_Exists verifies getRootCmd returns
// a valid command.
func TestGetRootCmd_Exists(t *testing.T) {
	cmd := getRootCmd()
	require.NotNil(t, cmd, "Root command should exist")
	assert.Equal(t, "gntaxon", cmd.Use,
		"Command name should be gntaxon")
}

// TestGetRootCmd_VersionFormat verifies version
// output format.
func TestGetRootCmd_VersionFormat(t *testing.T) {
	for _, flag := range []string{"--version", "-V"} {
		cmd := getRootCmd()
		cmd.Version = "version: v1.2.3\nbuild:   abc123"

		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{flag})

		err := cmd.Execute()
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "v1.2.3", flag)
		assert.Contains(t, output, "abc123", flag)
		assert.NotContains(t, output, "gntaxon version", flag)
	}
}

// TestGetRootCmd_HelpText verifies help text content.
func TestGetRootCmd_HelpText(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	for _, v := range []string{"gntaxon", "GNtaxon", "ingest", "resolve", "export", "GNTAXON_"} {
		assert.Contains(t, helpText, v)
	}
}

// TestGetRootCmd_Settings verifies bootstrap, run function and
// error silencing.
func TestGetRootCmd_Settings(t *testing.T) {
	cmd := getRootCmd()
	assert.NotNil(t, cmd.PersistentPreRunE,
		"PersistentPreRunE should be set for bootstrap")
	assert.NotNil(t, cmd.RunE,
		"RunE should be set to handle version flag")
	assert.True(t, cmd.SilenceErrors, "Errors should be silenced")
	assert.True(t, cmd.SilenceUsage, "Usage should be silenced on errors")
}

// TestGetRootCmd_Subcommands verifies that all commands are attached
// and have their flags.
func TestGetRootCmd_Subcommands(t *testing.T) {
	root := getRootCmd()
	tests := []struct {
		name  string
		flags []string
	}{
		{"ingest", []string{"store"}},
		{"resolve", []string{"store", "jobs", "batch-size", "cache-only", "progress-bar"}},
		{"export", []string{"store"}},
	}
	for _, tt := range tests {
		cmd, _, err := root.Find([]string{tt.name})
		require.NoError(t, err)
		assert.Equal(t, tt.name, cmd.Name())
		for _, f := range tt.flags {
			assert.NotNil(t, cmd.Flags().Lookup(f), tt.name+" --"+f)
		}
	}
}

// TestGetRootCmd_InvalidCommand verifies error on
// invalid command.
func TestGetRootCmd_InvalidCommand(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"nonexistent-command"})

	err := cmd.Execute()

	assert.Error(t, err,
		"Should error on invalid command")
	output := buf.String()
	assert.True(t,
		strings.Contains(output, "unknown") ||
			strings.Contains(err.Error(), "unknown"),
		"Error should indicate unknown command")
}

func TestInitEnvVars(t *testing.T) {
	t.Setenv("GNTAXON_STORE_TYPE", "memory")
	t.Setenv("GNTAXON_STORE_POSTGRES_PORT", "6543")
	t.Setenv("GNTAXON_RESOLVE_BATCH_SIZE", "7")
	t.Setenv("GNTAXON_JOBS_NUMBER", "3")

	v := viper.New()
	initEnvVars(v)
	assert.Equal(t, "memory", v.GetString("store.type"))
	assert.Equal(t, 6543, v.GetInt("store.postgres.port"))
	assert.Equal(t, 7, v.GetInt("resolve.batch_size"))
	assert.Equal(t, 3, v.GetInt("jobs_number"))
}

func TestInitConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(home))
	_, err := iofs.EnsureConfigFile(home)
	require.NoError(t, err)

	t.Setenv("GNTAXON_LOG_LEVEL", "debug")
	res, err := initConfig(home)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", res.Store.Type)
	assert.Equal(t, 100, res.Resolve.BatchSize)
	assert.Equal(t, "cache", res.Resolve.Enrichers[0])
	assert.Equal(t, "debug", res.Log.Level)

	_, err = initConfig(t.TempDir())
	assert.Error(t, err)
}
