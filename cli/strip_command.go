package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/audio"
)

type stripFlags struct {
	keep    []string
	out     string
	quality float64
	inPlace bool
}

func newStripCommand(ctx *commandContext) *cobra.Command {
	flags := &stripFlags{}
	cmd := &cobra.Command{
		Use:   "strip <file>...",
		Short: "Remove metadata, optionally keeping named image tags",
		Long: "Remove metadata from images, audio and video.\n\n" +
			"JPEG tags are removed without touching the compressed image data; --keep retains\n" +
			"the named tags (e.g. --keep Orientation,Copyright). Other image formats are re-encoded\n" +
			"as JPEG. Video is remuxed with ffmpeg using stream copy.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.out != "" && len(args) > 1 {
				return errors.New("--out needs exactly one input file")
			}
			if flags.out != "" && flags.inPlace {
				return errors.New("--out and --in-place are mutually exclusive")
			}
			for _, path := range args {
				if err := ctx.strip(cmd, path, flags); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&flags.keep, "keep", "k", nil, "Image tag names to keep")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output path (single input only)")
	cmd.Flags().Float64VarP(&flags.quality, "quality", "q", 0, "JPEG re-encode quality in (0, 1]; default from config")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "Overwrite the input file")
	return cmd
}

func (c *commandContext) strip(cmd *cobra.Command, path string, flags *stripFlags) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	id := core.Detect(data, path)
	keep := core.NewKeepSet(flags.keep...)

	var cleaned []byte
	switch core.MediaTypeFor(id) {
	case "image":
		s := c.scrubber()
		var out core.Outcome
		if len(keep) > 0 {
			out, err = s.StripSelectedMetadata(data, core.MIMEFor(id), keep, flags.quality)
		} else {
			out, err = s.StripAllMetadata(data, core.MIMEFor(id), flags.quality)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if out.FellBack {
			c.printer.PrintWarning("%s: tags could not be rewritten, image was re-encoded (%v)", path, out.Cause)
		}
		cleaned = out.Data
	case "audio":
		if len(keep) > 0 {
			return errors.New("--keep applies to images only")
		}
		if cleaned, err = audio.Strip(data, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case "video":
		if len(keep) > 0 {
			return errors.New("--keep applies to images only")
		}
		if cleaned, err = c.videoEngine().Strip(cmd.Context(), data, filepath.Base(path)); err != nil {
			return err
		}
	default:
		return &core.UnsupportedError{Format: id, Operation: "strip"}
	}

	ext := ""
	if outID := core.Detect(cleaned, ""); outID != id && outID != core.FmtUnknown {
		ext = core.Extension(outID)
	}
	dest := path
	if flags.inPlace {
		if ext != "" {
			c.printer.PrintWarning("%s: contents are now %s but the name is unchanged", path, ext)
		}
	} else {
		dest = outputPath(path, flags.out, strippedSuffix, ext)
	}
	if err := writeOutput(dest, cleaned); err != nil {
		return err
	}
	c.printer.PrintSuccess("%s → %s (%s → %s)", path, dest,
		humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(len(cleaned))))
	return nil
}
