package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gpeterson/vidnorm/internal/logger"
	"github.com/gpeterson/vidnorm/internal/store"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.LogLevel)

			history, err := store.Open(cfg.StateDir)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer history.Close()

			runs, err := history.RecentRuns(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			headers := []string{"Started", "Root", "Policy", "Found", "Skipped", "OK", "Failed", "Saved"}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Root,
					run.Policy,
					strconv.Itoa(run.Found),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					formatSaved(run.SpaceSaved),
				})
			}
			aligns := []columnAlignment{
				alignLeft, alignLeft, alignLeft,
				alignRight, alignRight, alignRight, alignRight, alignRight,
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}
