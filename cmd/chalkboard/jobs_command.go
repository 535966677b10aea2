package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"chalkboard/internal/daemon"
	"chalkboard/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool
	var completedOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs [request-id]",
		Short: "Show run history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showJob(ctx, cmd, args[0])
			}
			if failedOnly && completedOnly {
				return fmt.Errorf("--failed and --completed are mutually exclusive")
			}

			path := "/api/jobs"
			switch {
			case failedOnly:
				path += "?status=" + url.QueryEscape(string(jobs.StatusFailed))
			case completedOnly:
				path += "?status=" + url.QueryEscape(string(jobs.StatusCompleted))
			}

			var payload struct {
				Jobs []daemon.JobView `json:"jobs"`
			}
			if err := ctx.get(path, &payload); err != nil {
				return err
			}
			list := payload.Jobs
			if limit > 0 && len(list) > limit {
				list = list[:limit]
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, list)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, job := range list {
				detail := job.VideoURL
				if job.ErrorMessage != "" {
					detail = job.ErrorMessage
				}
				rows = append(rows, []string{
					job.RequestID,
					job.Topic,
					job.Status,
					yesNo(job.FallbackUsed),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Request", "Topic", "Status", "Fallback", "Detail"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Show only failed runs")
	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Show only completed runs")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs to show")
	return cmd
}

func showJob(ctx *commandContext, cmd *cobra.Command, requestID string) error {
	var job daemon.JobView
	if err := ctx.get("/api/jobs/"+url.PathEscape(requestID), &job); err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, job)
	}

	rows := [][]string{
		{"Request", job.RequestID},
		{"Topic", job.Topic},
		{"Slug", job.Slug},
		{"Status", job.Status},
		{"Speed factor", fmt.Sprintf("%.3f", job.SpeedFactor)},
		{"Stretch applied", yesNo(job.StretchApplied)},
		{"Fallback used", yesNo(job.FallbackUsed)},
		{"Public ID", job.PublicID},
		{"Video URL", job.VideoURL},
		{"Created", job.CreatedAt},
		{"Updated", job.UpdatedAt},
	}
	if job.ErrorMessage != "" {
		rows = append(rows, []string{"Error", job.ErrorMessage})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(rows))
	return nil
}
