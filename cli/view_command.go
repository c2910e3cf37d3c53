package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/audio"
)

func newViewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "view <file>...",
		Short: "Show the metadata a file carries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := ctx.view(cmd, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *commandContext) view(cmd *cobra.Command, path string) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	id := core.Detect(data, path)
	switch core.MediaTypeFor(id) {
	case "image":
		return c.printer.PrintMetadata(c.scrubber().Describe(data, core.MIMEFor(id), path))
	case "audio":
		flat, err := audio.Probe(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return c.printer.PrintFlat(path, string(id), flat)
	case "video":
		rec, err := c.videoEngine().Probe(cmd.Context(), data, filepath.Base(path), core.MIMEFor(id))
		if err != nil {
			return err
		}
		return c.printer.PrintVideo(rec)
	}
	return &core.UnsupportedError{Format: id, Operation: "view"}
}
