package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a schema from a .json, .yaml or .yml file and validates it.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}

	var s Schema
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return Schema{}, fmt.Errorf("schema: unsupported file extension %q", ext)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("decode schema %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}
