package main

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
)

func newTransplantCommand(ctx *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "transplant <source.jpg> <target.jpg>",
		Short: "Copy the EXIF directory of one JPEG into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(args[0])
			if err != nil {
				return err
			}
			target, err := readInput(args[1])
			if err != nil {
				return err
			}
			result := ctx.scrubber().TransplantMetadata(
				source, core.MIMEFor(core.Detect(source, args[0])),
				target, core.MIMEFor(core.Detect(target, args[1])))
			if bytes.Equal(result, target) {
				ctx.printer.PrintWarning("no metadata transplanted; %s left unchanged", args[1])
				return nil
			}
			dest := outputPath(args[1], out, "_exif", "")
			if err := writeOutput(dest, result); err != nil {
				return err
			}
			ctx.printer.PrintSuccess("%s → %s", args[0], dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path")
	return cmd
}
