package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vidnorm "github.com/gpeterson/vidnorm"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vidnorm version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vidnorm v%s\n", vidnorm.Version)
		},
	}
}
