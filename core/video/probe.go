package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/ankit-chaubey/media-metadata-surgery/core"
	"github.com/ankit-chaubey/media-metadata-surgery/core/logging"
)

var probeArgs = []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json"}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     uint32 `json:"width"`
	Height    uint32 `json:"height"`
}

type probeFormat struct {
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Tags       map[string]string `json:"tags"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe reports basic facts about a video container without decoding
// frames. The call is bounded by the configured probe timeout; running
// past it yields a ProbeError that matches core.ErrProbeTimeout.
func (e *Engine) Probe(ctx context.Context, data []byte, fileName, mime string) (core.VideoMetadataRecord, error) {
	rec := core.VideoMetadataRecord{
		FileName: fileName,
		FileSize: int64(len(data)),
		MIMEType: mime,
	}
	if rec.MIMEType == "" {
		rec.MIMEType = core.MIMEFor(core.Detect(data, fileName))
	}
	if err := e.Ready(ctx); err != nil {
		return rec, &core.ProbeError{FileName: fileName, Err: err}
	}

	in, _, cleanup, err := e.stage(data, stageExt(data, fileName))
	if err != nil {
		return rec, &core.ProbeError{FileName: fileName, Err: err}
	}
	defer cleanup()

	pctx, cancel := context.WithTimeout(ctx, e.opts.ProbeTimeout)
	defer cancel()
	_, ffprobe := e.tools()
	stdout, stderr, err := e.runner.Run(pctx, ffprobe, append(append([]string{}, probeArgs...), in))
	if errors.Is(pctx.Err(), context.DeadlineExceeded) {
		logging.WarnWithContext(e.logger, "probe timed out", "probe_timeout",
			logging.String(logging.FieldFile, fileName),
			logging.Duration("timeout", e.opts.ProbeTimeout),
			logging.String(logging.FieldImpact, "no container facts reported"),
			logging.String(logging.FieldErrorHint, "raise video.probe_timeout_seconds"))
		return rec, &core.ProbeError{FileName: fileName, Timeout: true, Err: pctx.Err()}
	}
	if err != nil {
		return rec, &core.ProbeError{FileName: fileName, Err: fmt.Errorf("ffprobe exit %d: %s", exitCode(err), tail(stderr, stderrTail))}
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return rec, &core.ProbeError{FileName: fileName, Err: fmt.Errorf("decode ffprobe output: %w", err)}
	}
	fillRecord(&rec, out)
	return rec, nil
}

func fillRecord(rec *core.VideoMetadataRecord, out probeOutput) {
	rec.FormatName = out.Format.FormatName
	if len(out.Format.Tags) > 0 {
		rec.Tags = out.Format.Tags
	}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil && !math.IsNaN(d) && !math.IsInf(d, 0) {
		rec.Duration = &d
	}
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width > 0 {
			w := s.Width
			rec.Width = &w
		}
		if s.Height > 0 {
			h := s.Height
			rec.Height = &h
		}
		break
	}
}

// stageExt keeps the original extension so tools that sniff by name agree
// with the content.
func stageExt(data []byte, fileName string) string {
	if ext := filepath.Ext(fileName); ext != "" && len(ext) <= 8 {
		return ext
	}
	return core.Extension(core.Detect(data, fileName))
}
