// Package condfile loads condition configurations and records from disk.
//
// Condition files are the editor's ConditionsConfig document as YAML
// (.yaml, .yml) or JSON (.json). Records are JSON objects; numbers are kept
// as json.Number so large integers compare and print exactly.
package condfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"gopkg.in/yaml.v3"
)

// Format is a condition file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a ConditionsConfig from path. It does not validate the
// configuration; Compile and Validate do that.
func Load(path string) (types.ConditionsConfig, error) {
	format, err := FormatFor(path)
	if err != nil {
		return types.ConditionsConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ConditionsConfig{}, fmt.Errorf("read conditions: %w", err)
	}
	config, err := Decode(data, format)
	if err != nil {
		return types.ConditionsConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Decode parses a ConditionsConfig document in the given format.
func Decode(data []byte, format Format) (types.ConditionsConfig, error) {
	var config types.ConditionsConfig
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return types.ConditionsConfig{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &config); err != nil {
			return types.ConditionsConfig{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return types.ConditionsConfig{}, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
	return config, nil
}

// LoadRecord decodes a single JSON object from r.
func LoadRecord(r io.Reader) (types.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var record types.Record
	if err := dec.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode record: empty input")
		}
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("decode record: expected a JSON object, got null")
	}
	if dec.More() {
		return nil, fmt.Errorf("decode record: trailing data after object")
	}
	return record, nil
}

// DecodeRecord is LoadRecord over a byte slice.
func DecodeRecord(data []byte) (types.Record, error) {
	return LoadRecord(bytes.NewReader(data))
}
