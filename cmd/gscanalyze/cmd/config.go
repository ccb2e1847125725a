package cmd

import (
	"fmt"

	"github.com/gscls/analyzer/internal/config"
)

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}
