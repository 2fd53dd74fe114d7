package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sidecarSuffix = ".json"

// SidecarPath derives messagesDir/<dir of file relative to workingDir>/<base>.json.
// The base name is the file name without its extension.
func SidecarPath(messagesDir, workingDir, file string) (string, error) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workingDir, abs)
	}
	rel, err := filepath.Rel(workingDir, abs)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", file, err)
	}

	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(messagesDir, filepath.Dir(rel), base+sidecarSuffix), nil
}

// MarshalDescriptors renders descriptors as a JSON array indented with two
// spaces. HTML characters are not escaped and there is no trailing newline.
func MarshalDescriptors(descriptors []Descriptor) ([]byte, error) {
	if descriptors == nil {
		descriptors = []Descriptor{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(descriptors); err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteSidecar writes descriptors to path, creating parent directories and
// replacing any existing file. The file is written to a temp name first and
// renamed into place.
func WriteSidecar(path string, descriptors []Descriptor) error {
	data, err := MarshalDescriptors(descriptors)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create messages directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
