// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Stats  StatsConfig  `toml:"stats"`
	Titles TitlesConfig `toml:"titles"`
}

// StatsConfig maps ranking-related settings.
type StatsConfig struct {
	Log                  *string  `toml:"log"`
	Criteria             *string  `toml:"criteria"`
	System               *string  `toml:"system"`
	Since                *string  `toml:"since"`
	Exclude              []string `toml:"exclude"`
	MinimumSessionLength *int     `toml:"minimum-session-length"`
	Top                  *int     `toml:"top"`
	Format               *string  `toml:"format"`
}

// TitlesConfig maps title lookup settings.
type TitlesConfig struct {
	RomsDir *string `toml:"roms-dir"`
	Enabled *bool   `toml:"enabled"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
