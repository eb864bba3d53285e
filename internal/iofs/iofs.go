// Package iofs manages GNtaxon files in the user's home directory and
// reads auxiliary files named in the configuration.
package iofs

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"

	"github.com/gnames/gntaxon/pkg/config"
	"gopkg.in/yaml.v3"
)

// ConfigYAML is written to the config file on the first run.
//
//go:embed config.yaml
var ConfigYAML string

// EnsureDirs creates config, cache and log directories under homeDir.
func EnsureDirs(homeDir string) error {
	for _, dir := range []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LogDir(homeDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return CreateDirError(dir, err)
		}
	}
	return nil
}

// EnsureConfigFile writes the default config file unless one exists
// already. It reports whether the file was created.
func EnsureConfigFile(homeDir string) (bool, error) {
	path := config.ConfigFilePath(homeDir)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, ReadFileError(path, err)
	}

	if err = os.WriteFile(path, []byte(ConfigYAML), 0644); err != nil {
		return false, WriteFileError(path, err)
	}
	return true, nil
}

// LoadCorrections reads name corrections from a YAML file:
//
//	corrections:
//	  "Homo sapien": "Homo sapiens"
func LoadCorrections(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReadFileError(path, err)
	}

	var doc struct {
		Corrections map[string]string `yaml:"corrections"`
	}
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, CorrectionsFileError(path, err)
	}
	res := make(map[string]string, len(doc.Corrections))
	for k, v := range doc.Corrections {
		if k == "" || v == "" {
			continue
		}
		res[k] = v
	}
	return res, nil
}
