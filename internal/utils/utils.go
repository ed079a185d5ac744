package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/bbtface/internal/types"
	"gopkg.in/yaml.v3"
)

// --- 1. Error Reporting ---

// errOut is where error boxes are written. Tests swap it out.
var errOut io.Writer = os.Stderr

// ShowError prints a formatted error box without exiting.
// Commands use it before returning the error to Cobra.
func ShowError(context string, err error) {
	fmt.Fprintf(errOut, "\n---------------------------------------------------------\n")
	fmt.Fprintf(errOut, "🚨 BBTFACE ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(errOut, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(errOut, "---------------------------------------------------------\n")
}

// --- 2. Descriptor Files ---

// faceFile is the seed format accepted by ReadFaces.
// A bare list of faces is accepted too.
type faceFile struct {
	Faces []types.Face `yaml:"faces"`
}

// ReadFaces loads labeled descriptors from a YAML or JSON file.
// JSON is parsed by the YAML decoder since it is a subset.
func ReadFaces(path string) ([]types.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file faceFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Faces) > 0 {
		return file.Faces, nil
	}

	var faces []types.Face
	if err := yaml.Unmarshal(data, &faces); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return faces, nil
}

// ReadDescriptor loads a single probe descriptor. The file holds either a bare
// JSON array of numbers or an object with a "descriptor" field.
func ReadDescriptor(path string) (types.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescriptor(string(data))
}

// ParseDescriptor decodes a descriptor from its JSON text.
func ParseDescriptor(s string) (types.Descriptor, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var wrapped struct {
			Descriptor types.Descriptor `json:"descriptor"`
		}
		if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
			return nil, fmt.Errorf("parse descriptor: %w", err)
		}
		return wrapped.Descriptor, nil
	}

	var d types.Descriptor
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	return d, nil
}
