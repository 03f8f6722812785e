package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/canopy/pkg/domain"
)

// Format is a tree file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a tree spec. Unknown top-level keys are rejected.
func Decode(data []byte, format Format) (*domain.TreeSpec, error) {
	var spec domain.TreeSpec
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSpec, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSpec, err)
		}
	}
	return &spec, nil
}

// Encode renders spec in format.
func Encode(spec *domain.TreeSpec, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(spec, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadSpec loads a tree file. A spec without an id takes the file's base name.
func ReadSpec(path string) (*domain.TreeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrTreeNotFound)
		}
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	spec, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if spec.ID == "" {
		spec.ID = idOf(filepath.Base(path))
	}
	return spec, nil
}

// WriteSpec writes spec to path atomically, in the format its extension implies.
func WriteSpec(path string, spec *domain.TreeSpec) error {
	data, err := Encode(spec, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes to a temp file in the destination directory, fsyncs it and
// renames it over path, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure tree directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".canopy-*"+tmpExt)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename cannot replace an existing file on Windows.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace tree file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

const tmpExt = ".tmp"

var treeExts = []string{".yaml", ".yml", ".json"}

// idOf returns the tree id for a file name, or "" when it is not a tree file.
func idOf(name string) string {
	if strings.HasPrefix(name, ".") {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range treeExts {
		if ext == e {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return ""
}
