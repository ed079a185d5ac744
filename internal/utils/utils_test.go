package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShowError(t *testing.T) {
	var buf bytes.Buffer
	old := errOut
	errOut = &buf
	defer func() { errOut = old }()

	ShowError("Database search failed", errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, "BBTFACE ERROR: Database search failed") {
		t.Errorf("Missing context line in %q", out)
	}
	if !strings.Contains(out, "DETAILS: connection refused") {
		t.Errorf("Missing details line in %q", out)
	}
}

func TestReadFaces(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    int
		wantErr bool
	}{
		{
			name: "YAML with faces key",
			file: "seed.yaml",
			content: `faces:
  - label: Sheldon
    section: cast
    descriptor: [0.1, 0.2, 0.3]
  - label: Penny
    section: guests
    descriptor: [0.3, 0.2, 0.1]
`,
			want: 2,
		},
		{
			name:    "Bare JSON list",
			file:    "seed.json",
			content: `[{"label": "Raj", "section": "cast", "descriptor": [1, 0]}]`,
			want:    1,
		},
		{
			name:    "Garbage",
			file:    "bad.yaml",
			content: "faces: [oops",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			faces, err := ReadFaces(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFaces() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(faces) != tt.want {
				t.Errorf("ReadFaces() returned %d faces, want %d", len(faces), tt.want)
			}
		})
	}
}

func TestReadFaces_Values(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := "- label: Howard\n  section: cast\n  descriptor: [0.5, -0.25]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	faces, err := ReadFaces(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(faces) != 1 {
		t.Fatalf("Expected 1 face, got %d", len(faces))
	}
	f := faces[0]
	if f.Label != "Howard" || f.Section != "cast" {
		t.Errorf("Unexpected metadata: %+v", f)
	}
	if len(f.Descriptor) != 2 || f.Descriptor[0] != 0.5 || f.Descriptor[1] != -0.25 {
		t.Errorf("Unexpected descriptor: %v", f.Descriptor)
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"Bare array", "[0.1, 0.2, 0.3]", 3, false},
		{"Wrapped object", `{"descriptor": [1, 2]}`, 2, false},
		{"Surrounding whitespace", "\n [1]\n", 1, false},
		{"Not JSON", "hello", 0, true},
		{"Strings in array", `["a"]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDescriptor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(d) != tt.want {
				t.Errorf("ParseDescriptor() length = %d, want %d", len(d), tt.want)
			}
		})
	}
}
