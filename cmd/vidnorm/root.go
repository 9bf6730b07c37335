package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gpeterson/vidnorm/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "vidnorm",
		Short:         "Batch-convert video files to H.264/AAC MP4",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newHistoryCommand(&configFlag))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig resolves the config path (flag, then $VIDNORM_CONFIG, then
// the user config dir) and loads it. A missing file yields defaults.
func loadConfig(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("VIDNORM_CONFIG")
	}
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "vidnorm", "vidnorm.yaml")
		} else {
			path = "vidnorm.yaml"
		}
	}
	return config.Load(path)
}
