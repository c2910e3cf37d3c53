package video

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/floostack/transcoder"
	"github.com/floostack/transcoder/ffmpeg"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

// muxers maps containers to the ffmpeg muxer that writes them.
var muxers = map[core.FormatID]string{
	core.FmtMP4:  "mp4",
	core.FmtMOV:  "mov",
	core.FmtMKV:  "matroska",
	core.FmtWebM: "webm",
	core.FmtAVI:  "avi",
	core.FmtWMV:  "asf",
	core.FmtFLV:  "flv",
}

// streamArgs drop chapters, per-stream tags and timed-metadata data
// streams, copy subtitle streams and stop the muxers writing encoder
// identification.
var streamArgs = []string{
	"-map", "0",
	"-dn",
	"-map_chapters", "-1",
	"-map_metadata:s:v", "-1",
	"-map_metadata:s:a", "-1",
	"-c:s", "copy",
	"-fflags", "+bitexact",
	"-flags:v", "+bitexact",
	"-flags:a", "+bitexact",
}

// containerFor picks the container from the original file name, then from
// the content signature.
func containerFor(data []byte, fileName string) core.FormatID {
	if id := core.FormatForExtension(fileName); muxers[id] != "" {
		return id
	}
	if id := core.Detect(data, ""); muxers[id] != "" {
		return id
	}
	return core.FmtUnknown
}

func remuxOptions(muxer string) *ffmpeg.Options {
	yes := true
	drop, copyCodec := "-1", "copy"
	return &ffmpeg.Options{
		HideBanner:   &yes,
		Overwrite:    &yes,
		MapMetadata:  &drop,
		VideoCodec:   &copyCodec,
		AudioCodec:   &copyCodec,
		OutputFormat: &muxer,
	}
}

func remuxArgs(in, out string, opts transcoder.Options) []string {
	args := append([]string{"-i", in}, streamArgs...)
	args = append(args, opts.GetStrArguments()...)
	return append(args, out)
}

// Strip returns a copy of the video with container, stream and chapter
// metadata removed. Streams are copied, never re-encoded. Any failure is a
// StripError; the input is never returned as if it were cleaned.
func (e *Engine) Strip(ctx context.Context, data []byte, fileName string) ([]byte, error) {
	if err := e.Ready(ctx); err != nil {
		return nil, &core.StripError{FileName: fileName, Err: err}
	}
	id := containerFor(data, fileName)
	if id == core.FmtUnknown {
		return nil, &core.StripError{
			FileName: fileName,
			Err:      &core.UnsupportedError{Format: core.Detect(data, fileName), Operation: "video metadata removal"},
		}
	}

	in, out, cleanup, err := e.stage(data, core.Extension(id))
	if err != nil {
		return nil, &core.StripError{FileName: fileName, Err: err}
	}
	defer cleanup()

	sctx, cancel := context.WithTimeout(ctx, e.opts.StripTimeout)
	defer cancel()
	ffmpegBin, _ := e.tools()
	_, stderr, err := e.runner.Run(sctx, ffmpegBin, remuxArgs(in, out, remuxOptions(muxers[id])))
	if err != nil {
		if errors.Is(sctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("remux exceeded %s: %w", e.opts.StripTimeout, sctx.Err())
		}
		return nil, &core.StripError{FileName: fileName, ExitCode: exitCode(err), Stderr: tail(stderr, stderrTail), Err: err}
	}

	cleaned, err := os.ReadFile(out)
	if err != nil {
		return nil, &core.StripError{FileName: fileName, Err: fmt.Errorf("read remux output: %w", err)}
	}
	if len(cleaned) == 0 {
		return nil, &core.StripError{FileName: fileName, Stderr: tail(stderr, stderrTail), Err: errors.New("remux produced no output")}
	}

	if id == core.FmtMP4 || id == core.FmtMOV {
		if left := metadataAtoms(cleaned); len(left) > 0 {
			logging.WarnWithContext(e.logger, "metadata atoms survived remux", "strip_incomplete",
				logging.String(logging.FieldFile, fileName),
				logging.Int("atoms", len(left)),
				logging.String("first", left[0]),
				logging.String(logging.FieldImpact, "output may still carry descriptive tags"))
		}
	}
	e.logger.Info("video metadata removed",
		logging.String(logging.FieldFile, fileName),
		logging.String("container", string(id)),
		logging.Int("bytes_in", len(data)),
		logging.Int("bytes_out", len(cleaned)))
	return cleaned, nil
}
