package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings the command line falls back to when a flag is
// not given.
type Config struct {
	Color      bool   // keep colour channels instead of forcing greyscale
	PlotDir    string // where histogram plots are written; empty disables plots
	Preview    bool   // show results in the terminal
	UpdateRepo string // GitHub owner/name checked by the update command
}

// Load reads an optional .env file from the working directory and then the
// LUTIMG_* environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	envVars := map[string]string{
		"LUTIMG_COLOR":       "false",
		"LUTIMG_PLOT_DIR":    "",
		"LUTIMG_PREVIEW":     "false",
		"LUTIMG_UPDATE_REPO": "Fepozopo/lutimg",
	}
	for key := range envVars {
		if value := os.Getenv(key); value != "" {
			envVars[key] = value
		}
	}

	color, err := strconv.ParseBool(envVars["LUTIMG_COLOR"])
	if err != nil {
		return nil, fmt.Errorf("error parsing LUTIMG_COLOR: %v", err)
	}
	preview, err := strconv.ParseBool(envVars["LUTIMG_PREVIEW"])
	if err != nil {
		return nil, fmt.Errorf("error parsing LUTIMG_PREVIEW: %v", err)
	}

	return &Config{
		Color:      color,
		PlotDir:    envVars["LUTIMG_PLOT_DIR"],
		Preview:    preview,
		UpdateRepo: envVars["LUTIMG_UPDATE_REPO"],
	}, nil
}
