// Package docstore loads the profile and validator documents the engine
// operates on (the override store reads its own JSON document in package
// override). A document may be written as YAML,
// JSON (a YAML subset), or TOML; the loader picks a decoder from the
// file extension and falls back to YAML for anything unrecognized,
// since YAML parses plain JSON too.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the decoded document's on-disk encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatForPath infers a Format from a file's extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load reads path and unmarshals it into v, choosing a decoder by
// extension. A missing file is reported as an *os.PathError so callers
// can distinguish "absent" from "malformed" with os.IsNotExist.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Unmarshal(FormatForPath(path), data, v)
}

// Unmarshal decodes data as format into v.
func Unmarshal(format Format, data []byte, v any) error {
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding toml document: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding yaml document: %w", err)
		}
	}
	return nil
}

// Save marshals v and writes it to path, choosing an encoder by the
// path's extension and creating parent directories as needed.
func Save(path string, v any) error {
	data, err := Marshal(FormatForPath(path), v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal encodes v as format.
func Marshal(format Format, v any) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding toml document: %w", err)
		}
		return data, nil
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml document: %w", err)
		}
		return data, nil
	}
}
