package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const strippedSuffix = "_noexif"

// outputPath names the file written for in. An explicit out wins; otherwise
// suffix goes before the extension, and ext replaces the extension when the
// output format differs from the input.
func outputPath(in, out, suffix, ext string) string {
	if out != "" {
		return out
	}
	if ext == "" {
		ext = filepath.Ext(in)
	}
	return strings.TrimSuffix(in, filepath.Ext(in)) + suffix + ext
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput replaces path atomically.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".surgery-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
