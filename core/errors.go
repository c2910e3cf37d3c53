package core

import (
	"errors"
	"fmt"
)

var (
	// ErrProbeTimeout marks a probe that ran past its deadline.
	ErrProbeTimeout = errors.New("probe timed out")
	// ErrUnavailable is returned when the remux engine cannot be initialized.
	ErrUnavailable = errors.New("metadata engine unavailable")
)

// FormatError reports bytes that do not form a valid container or tag
// directory: wrong signature, bad byte-order mark, or an offset/length that
// points outside the buffer.
type FormatError struct {
	What   string // structure being read, e.g. "IFD0", "APP1 segment"
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	if e.What == "" {
		return fmt.Sprintf("malformed input at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("malformed %s at offset %d: %s", e.What, e.Offset, e.Reason)
}

// OutOfBounds builds a FormatError for a read that would run past size.
func OutOfBounds(what string, offset, length, size int64) *FormatError {
	return &FormatError{
		What:   what,
		Offset: offset,
		Reason: fmt.Sprintf("length %d exceeds buffer size %d", length, size),
	}
}

// EncodeError reports a directory that cannot be serialized.
type EncodeError struct {
	Section string
	Tag     uint16
	Reason  string
}

func (e *EncodeError) Error() string {
	if e.Section == "" {
		return "encode: " + e.Reason
	}
	return fmt.Sprintf("encode %s tag 0x%04X: %s", e.Section, e.Tag, e.Reason)
}

// ProbeError reports a container probe failure.
type ProbeError struct {
	FileName string
	Timeout  bool
	Err      error
}

func (e *ProbeError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("probe %s: %v", e.FileName, ErrProbeTimeout)
	}
	return fmt.Sprintf("probe %s: %v", e.FileName, e.Err)
}

func (e *ProbeError) Unwrap() error {
	if e.Timeout {
		return ErrProbeTimeout
	}
	return e.Err
}

// StripError reports a remux that did not produce a cleaned output.
type StripError struct {
	FileName string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *StripError) Error() string {
	msg := fmt.Sprintf("strip %s", e.FileName)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += " (" + e.Stderr + ")"
	}
	return msg
}

func (e *StripError) Unwrap() error { return e.Err }

// UnsupportedError reports a format the requested operation cannot handle.
type UnsupportedError struct {
	Format    FormatID
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported for %s", e.Operation, e.Format)
}
