package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chalkboard/internal/daemon"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon readiness and run counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemon.StatusResponse
			if err := ctx.get("/api/status", &status); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues([][]string{
				{"Running", yesNo(status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Jobs DB", status.JobsDBPath},
				{"Lock file", status.LockFilePath},
				{"Missing credentials", formatMissing(status.MissingCredentials)},
			}))

			depRows := make([][]string, 0, len(status.Dependencies))
			for _, dep := range status.Dependencies {
				detail := dep.Detail
				if detail == "" {
					detail = dep.Description
				}
				depRows = append(depRows, []string{dep.Name, dep.Command, yesNo(dep.Available), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Dependency", "Command", "Available", "Detail"},
				depRows,
				nil,
			))

			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Pending", "Processing", "Completed", "Failed"},
				[][]string{{
					fmt.Sprintf("%d", status.Jobs.Total),
					fmt.Sprintf("%d", status.Jobs.Pending),
					fmt.Sprintf("%d", status.Jobs.Processing),
					fmt.Sprintf("%d", status.Jobs.Completed),
					fmt.Sprintf("%d", status.Jobs.Failed),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func formatMissing(missing []string) string {
	if len(missing) == 0 {
		return "none"
	}
	return strings.Join(missing, ", ")
}
