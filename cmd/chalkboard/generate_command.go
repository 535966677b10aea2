package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chalkboard/internal/daemon"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate and publish a narrated video for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("topic must not be empty")
			}

			var result daemon.GenerateResponse
			if err := ctx.post("/api/generate", daemon.GenerateRequest{Topic: topic}, &result); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Topic", result.Topic},
				{"Request", result.RequestID},
				{"Public ID", result.PublicID},
				{"Video URL", result.VideoURL},
				{"Speed factor", fmt.Sprintf("%.3f", result.SpeedFactor)},
				{"Stretch applied", yesNo(result.StretchApplied)},
				{"Fallback used", yesNo(result.FallbackUsed)},
				{"Elapsed", fmt.Sprintf("%.1fs", result.ElapsedSeconds)},
			}
			fmt.Fprintln(out, renderKeyValues(rows))
			return nil
		},
	}
}
