package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumescore/internal/errors"
)

// resumeFileExtensions are the extensions we expect resume input to
// carry. Anything else still gets processed, but triggers a warning
// since binary formats like PDF are not parseable here.
var resumeFileExtensions = []string{".json", ".txt", ".md", ".markdown", ".text"}

// FileProcessor reads resume input files and writes report output,
// wrapping failures in the application's structured error types.
type FileProcessor struct {
	logger *errors.Logger
}

func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile returns the content of a resume input file.
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("Resume file not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read resume file: %s", filename), err)
	}
	return string(content), nil
}

// WriteFile writes a rendered report, creating parent directories as
// needed.
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create report directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write report file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadFiles checks each input path and returns the file
// contents in argument order.
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if err := checkInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid resume file %s", filename), err)
		}

		if !hasResumeExtension(filename) {
			fp.warn("Resume file has an unexpected extension, expected a text format", filename)
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile checks that a report destination is writable. An
// empty path means stdout and is always valid.
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewValidationError("INVALID_OUTPUT_FILE",
				fmt.Sprintf("Invalid report destination: %s", filename),
				fmt.Errorf("cannot create directory %s: %w", dir, err))
		}
	}
	return nil
}

func (fp *FileProcessor) warn(msg, filename string) {
	if fp.logger != nil {
		fp.logger.Warn(msg, "filename", filename)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", msg, filename)
}

// checkInputFile verifies the path names a readable regular file.
func checkInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

func hasResumeExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(resumeFileExtensions, ext)
}
