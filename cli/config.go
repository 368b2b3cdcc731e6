package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/EzraMarks/obsidian-image-converter/core/source"
)

// ConfigFile is the optional YAML configuration, read from
// ~/.imgmeta.yaml unless -config points somewhere else. Command-line
// flags take precedence over values found here.
type ConfigFile struct {
	Scan ScanConfig           `yaml:"scan"`
	S3   *source.BucketConfig `yaml:"s3"`
}

// ScanConfig carries defaults for the scan command.
type ScanConfig struct {
	Workers  int  `yaml:"workers"`
	Cache    bool `yaml:"cache"`
	Exiftool bool `yaml:"exiftool"`
}

// defaultConfigPath returns ~/.imgmeta.yaml, falling back to the
// working directory when the home directory cannot be resolved.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".imgmeta.yaml"
	}
	return filepath.Join(home, ".imgmeta.yaml")
}

// loadConfig reads the YAML config file. A missing file is an error
// only when the path was given explicitly; the default location is
// allowed to not exist.
func loadConfig(path string) (*ConfigFile, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &ConfigFile{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
