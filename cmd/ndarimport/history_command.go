package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ndarimport/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List imports recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Journal.Path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No journal at %s (enable [journal] to record imports)\n", cfg.Journal.Path)
				return nil
			}

			jrnl, err := journal.OpenReader(cmd.Context(), cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer jrnl.Close()

			if id := strings.TrimSpace(runID); id != "" {
				run, err := jrnl.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				entities, err := jrnl.Entities(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprint(out, renderRunDetail(run, entities))
				return nil
			}

			runs, err := jrnl.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No imports recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the entities created by one run")
	return cmd
}

func renderRuns(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			formatTimestamp(run.StartedAt),
			run.Status,
			run.ProjectLabel,
			dash(run.ProjectID),
			dash(run.Error),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Status", "Project", "Project ID", "Error"},
		rows,
		nil,
	)
}

func renderRunDetail(run journal.Run, entities []journal.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:      %s\n", run.ID)
	fmt.Fprintf(&b, "Status:   %s\n", run.Status)
	fmt.Fprintf(&b, "Folder:   %s\n", run.Folder)
	fmt.Fprintf(&b, "Service:  %s (user %s)\n", run.BaseURL, run.User)
	fmt.Fprintf(&b, "Started:  %s\n", formatTimestamp(run.StartedAt))
	fmt.Fprintf(&b, "Finished: %s\n", formatTimestamp(run.FinishedAt))
	if run.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", run.Error)
	}
	if len(entities) == 0 {
		b.WriteString("No entities created\n")
		return b.String()
	}
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.Kind, e.Label, e.RemoteID, dash(e.ParentID), dash(e.SubjectKey)})
	}
	b.WriteString(renderTable([]string{"Kind", "Label", "ID", "Parent", "Subject"}, rows, nil))
	b.WriteByte('\n')
	return b.String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
