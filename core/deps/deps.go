// Package deps reports whether the external tools the video path needs are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary the scrubber may call.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the result of checking one Requirement.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// VideoTools lists the binaries the remux engine needs.
func VideoTools(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "stream-copy remux for video metadata removal"},
		{Name: "FFprobe", Command: ffprobe, Description: "container inspection for video metadata"},
	}
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FirstMissing returns the first unavailable non-optional requirement.
func FirstMissing(statuses []Status) (Status, bool) {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return s, true
		}
	}
	return Status{}, false
}
