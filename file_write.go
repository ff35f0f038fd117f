package vcardtool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"

	"github.com/simonhull/vcardtool/internal/charset"
	"github.com/simonhull/vcardtool/internal/lineio"
	"github.com/simonhull/vcardtool/internal/merge"
)

// writeAtomic runs write against a temporary file next to outputPath and
// renames it into place once write, sync and close have all succeeded.
// If any step fails, the partially written data is cleaned up and
// outputPath is left untouched.
//
// inputPath is only consulted for WithPreserveModTime; validate is only
// called for WithValidation.
func writeAtomic(inputPath, outputPath string, options *saveOptions, write func(io.Writer) error, validate func(string) error) error { //nolint:gocyclo // Atomic file operations require sequential steps
	// Get input file's mod time if we need to preserve it
	var origInfo os.FileInfo
	if options.preserveModTime {
		info, err := os.Stat(inputPath)
		if err == nil {
			origInfo = info
		}
	}

	// Create temp file in same directory as output (for atomic rename)
	outputDir := filepath.Dir(outputPath)
	tempFile, err := os.CreateTemp(outputDir, ".vcardtool-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure cleanup on any error
	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if err := write(tempFile); err != nil {
		return err
	}

	// Sync temp file (fsync) to ensure data is on disk
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Handle backup option (rename existing output to backup before replace)
	if options.backupSuffix != "" {
		backupPath := outputPath + options.backupSuffix
		if _, err := os.Stat(outputPath); err == nil {
			if err := os.Rename(outputPath, backupPath); err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
		}
	}

	// Atomic rename temp -> output
	if err := os.Rename(tempPath, outputPath); err != nil {
		return fmt.Errorf("rename temp to output: %w", err)
	}

	// Mark success so defer doesn't clean up
	success = true

	if options.preserveModTime && origInfo != nil {
		_ = os.Chtimes(outputPath, origInfo.ModTime(), origInfo.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	if options.validate && validate != nil {
		if err := validate(outputPath); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return nil
}

// validateFile re-reads a written file and checks that it loads as a
// sequence of balanced records that all carry FN.
func validateFile(path string, enc encoding.Encoding) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}
	defer f.Close() //nolint:errcheck // Best effort close

	r := charset.NewReader(f, enc)
	if _, err := merge.Load(lineio.NewReader(r, path)); err != nil {
		return err
	}
	return nil
}
