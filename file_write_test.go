package vcardtool

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteAtomic_WriteFailure(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "out.vcf")
	if err := os.WriteFile(outputPath, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := writeAtomic("", outputPath, defaultSaveOptions(), func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Errorf("output = %q, want the previous contents", data)
	}
	if names := listDir(t, tmpDir); len(names) != 1 {
		t.Errorf("temp file left behind: %v", names)
	}
}

func TestWriteAtomic_Backup(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "out.vcf")

	// No existing output: nothing to back up.
	if err := writeAtomic("", outputPath, buildSaveOptions([]SaveOption{WithBackup(".bak")}), writeString("one"), nil); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := os.Stat(outputPath + ".bak"); !os.IsNotExist(err) {
		t.Errorf("unexpected backup after first write: %v", err)
	}

	if err := writeAtomic("", outputPath, buildSaveOptions([]SaveOption{WithBackup(".bak")}), writeString("two"), nil); err != nil {
		t.Fatalf("second write: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{outputPath, "two"},
		{outputPath + ".bak", "one"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(tt.path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("%s = %q, want %q", filepath.Base(tt.path), data, tt.want)
		}
	}
}

func TestWriteAtomic_Validation(t *testing.T) {
	tmpDir := t.TempDir()
	opts := buildSaveOptions([]SaveOption{WithValidation()})
	validate := func(path string) error {
		return validateFile(path, unicode.UTF8)
	}

	good := filepath.Join(tmpDir, "good.vcf")
	if err := writeAtomic("", good, opts, writeString("BEGIN:VCARD\r\nFN:A\r\nEND:VCARD\r\n"), validate); err != nil {
		t.Errorf("valid output rejected: %v", err)
	}

	bad := filepath.Join(tmpDir, "bad.vcf")
	err := writeAtomic("", bad, opts, writeString("BEGIN:VCARD\r\nN:A;;;;\r\nEND:VCARD\r\n"), validate)
	if !errors.Is(err, ErrMissingFN) {
		t.Errorf("expected ErrMissingFN, got %v", err)
	}
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "missing", "out.vcf")

	err := writeAtomic("", outputPath, defaultSaveOptions(), writeString("x"), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
