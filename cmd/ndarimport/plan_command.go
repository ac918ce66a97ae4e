package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ndarimport/internal/tree"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "plan <folderpath>",
		Short: "Show what an import of the folder would create, without contacting the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(group) == "" {
				group = cfg.Remote.Group
			}
			built, err := tree.Build(args[0], group, treeOptions(cfg))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPlan(built.Plan()))
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Group to file the project under (default remote.group)")
	return cmd
}

func renderPlan(plan tree.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s (group %s)\n", plan.Project.Label, plan.Project.Group)

	if len(plan.Uploads) == 0 {
		b.WriteString("No sessions to upload\n")
	} else {
		rows := make([][]string, 0, len(plan.Uploads))
		for _, upload := range plan.Uploads {
			labels := make([]string, 0, len(upload.Acquisitions))
			for _, acq := range upload.Acquisitions {
				labels = append(labels, acq.Label)
			}
			rows = append(rows, []string{
				upload.SubjectKey,
				upload.Session.Subject.Sex,
				strconv.FormatInt(upload.Session.Subject.Age, 10),
				strconv.Itoa(len(upload.Acquisitions)),
				strings.Join(labels, ", "),
			})
		}
		b.WriteString(renderTable(
			[]string{"Subject", "Sex", "Age (s)", "Acquisitions", "Labels"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%d sessions, %d acquisitions\n", len(plan.Uploads), plan.AcquisitionCount())
	if len(plan.Skipped) > 0 {
		fmt.Fprintf(&b, "Skipped (no images): %s\n", strings.Join(plan.Skipped, ", "))
	}
	if len(plan.Orphaned) > 0 {
		fmt.Fprintf(&b, "Images for unknown subjects (not uploaded): %s\n", strings.Join(plan.Orphaned, ", "))
	}
	return b.String()
}
