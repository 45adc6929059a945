package fileutil_test

// Notes:
// - The rename and close error branches in WriteFileAtomic are not tested:
//   triggering those failures portably requires a faulty filesystem.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-edureport/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateName - File name validation
// ---------------------------------------------------------------------------

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "report file name",
			input: "Educational_Recommendations_2026-10-19.pdf",
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: fileutil.ErrNameEmpty,
		},
		{
			name:    "forward slash path traversal",
			input:   "../etc/passwd",
			wantErr: fileutil.ErrNamePathTraversal,
		},
		{
			name:    "backslash path traversal",
			input:   "..\\windows\\system32",
			wantErr: fileutil.ErrNamePathTraversal,
		},
		{
			name:    "null byte injection",
			input:   "report.pdf\x00exe",
			wantErr: fileutil.ErrNamePathTraversal,
		},
		{
			name:    "parent directory",
			input:   "..",
			wantErr: fileutil.ErrNamePathTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic artifact writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subdir  string
		content []byte
	}{
		{
			name:    "existing directory",
			content: []byte("%PDF-1.3 test"),
		},
		{
			name:    "missing directory is created",
			subdir:  "nested/out",
			content: []byte("%PDF-1.3 nested"),
		},
		{
			name:    "empty content",
			content: []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), tt.subdir)
			path, err := fileutil.WriteFileAtomic(dir, "report.pdf", tt.content)
			if err != nil {
				t.Fatalf("WriteFileAtomic() error = %v", err)
			}

			if path != filepath.Join(dir, "report.pdf") {
				t.Errorf("path = %q, want %q", path, filepath.Join(dir, "report.pdf"))
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read written file: %v", err)
			}
			if string(data) != string(tt.content) {
				t.Errorf("content = %q, want %q", data, tt.content)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".tmp") {
					t.Errorf("temporary file %q left behind", e.Name())
				}
			}
		})
	}
}

func TestWriteFileAtomic_Overwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := fileutil.WriteFileAtomic(dir, "a.pdf", []byte("first")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	path, err := fileutil.WriteFileAtomic(dir, "a.pdf", []byte("second"))
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}
}

func TestWriteFileAtomic_InvalidName(t *testing.T) {
	t.Parallel()

	_, err := fileutil.WriteFileAtomic(t.TempDir(), "../escape.pdf", []byte("x"))
	if !errors.Is(err, fileutil.ErrNamePathTraversal) {
		t.Errorf("WriteFileAtomic() error = %v, want ErrNamePathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "exists.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDirWritable(t *testing.T) {
	t.Parallel()

	if err := fileutil.DirWritable(t.TempDir()); err != nil {
		t.Errorf("DirWritable(tempdir) = %v, want nil", err)
	}
	if err := fileutil.DirWritable(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("DirWritable(missing) = nil, want error")
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"http://localhost:5000", true},
		{"https://example.com/app", true},
		{"localhost:5000", false},
		{"file:///tmp/page.html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
