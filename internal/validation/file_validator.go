package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"contractreport/internal/dataprocessing"
)

// FileValidator checks local input files and output directories before a
// report run touches them.
type FileValidator struct {
	logger *slog.Logger
}

func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger.With(slog.String("component", "file_validator"))}
}

// ValidateUpload checks an upload name and returns its format. Office lock
// files ("~$report.xlsx") are rejected.
func (v *FileValidator) ValidateUpload(name string) (dataprocessing.Format, error) {
	if base := filepath.Base(name); strings.HasPrefix(base, "~$") {
		v.logger.Warn("rejecting office lock file", slog.String("file", name))
		return "", fmt.Errorf("file %s is a temporary Excel file", base)
	}

	format, err := dataprocessing.FormatFromFilename(name)
	if err != nil {
		v.logger.Warn("unsupported upload format",
			slog.String("file", name),
			slog.String("extension", filepath.Ext(name)))
		return "", err
	}
	return format, nil
}

// ValidateFile checks that path is an existing, readable, non-empty CSV or
// XLSX file and returns its format.
func (v *FileValidator) ValidateFile(path string) (dataprocessing.Format, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", v.reject(path, fmt.Errorf("file %s does not exist", path))
	case err != nil:
		return "", v.reject(path, fmt.Errorf("failed to stat file %s: %w", path, err))
	case info.IsDir():
		return "", v.reject(path, fmt.Errorf("%s is a directory, not a file", path))
	case info.Size() == 0:
		return "", v.reject(path, fmt.Errorf("file %s is empty", path))
	}

	format, err := v.ValidateUpload(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", v.reject(path, fmt.Errorf("file %s is not readable: %w", path, err))
	}
	f.Close()

	v.logger.Debug("input file accepted",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputDirectory creates dir when missing and probes that it is
// writable. The probe file is removed again.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return v.reject(dir, fmt.Errorf("failed to create output directory %s: %w", dir, err))
	}

	probe, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return v.reject(dir, fmt.Errorf("output directory %s is not writable: %w", dir, err))
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("output directory ready", slog.String("directory", dir))
	return nil
}

func (v *FileValidator) reject(path string, err error) error {
	v.logger.Error("path rejected", slog.String("path", path), slog.String("error", err.Error()))
	return err
}
