package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultConfigFileName = "config.yml"

type flags struct {
	configPath string
	replay     bool
}

var (
	parsed  flags
	rootCmd = &cobra.Command{
		Use:   "iou-ledger-service",
		Short: "Serve the IOU ledger API and consume reserve events",
		Args:  cobra.NoArgs,
		// flags are read by main once Execute returns
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
)

// Setup parses the command line. Without --config the service looks for
// config.yml in the home directory.
func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	rootCmd.Flags().StringVar(
		&parsed.configPath, "config", filepath.Join(homePath, defaultConfigFileName), "path to the config file",
	)
	rootCmd.Flags().BoolVar(
		&parsed.replay, "replay", false, "republish unprocessable reserve events and exit",
	)
	return rootCmd.Execute()
}

func GetConfigPath() string {
	return parsed.configPath
}

func GetReplayFlag() bool {
	return parsed.replay
}
