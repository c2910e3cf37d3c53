package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-surgery/core/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the external tools video support needs are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := deps.CheckBinaries(deps.VideoTools(ctx.config.Video.FFmpegBinary, ctx.config.Video.FFprobeBinary))
			if ctx.flags.json {
				return ctx.printer.PrintJSON(statuses)
			}
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state, where := "missing", s.Detail
				if s.Available {
					state, where = "ok", s.Path
				}
				rows = append(rows, []string{s.Name, state, where, s.Description})
			}
			ctx.printer.PrintTable([]string{"Tool", "Status", "Location", "Used for"}, rows)
			if missing, ok := deps.FirstMissing(statuses); ok {
				return fmt.Errorf("%s is required for video files: %s", missing.Name, missing.Detail)
			}
			return nil
		},
	}
}
