package utils

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// DownloadSpec describes one download. It is built once per job and passed
// by value; nothing downstream mutates it.
type DownloadSpec struct {
	BlockSize  int64
	URI        string
	OutputDir  string
	OutputName string
}

func (s DownloadSpec) Validate() error {
	if s.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive, got %d", ErrConfig, s.BlockSize)
	}
	if strings.TrimSpace(s.URI) == "" {
		return fmt.Errorf("%w: uri is required", ErrConfig)
	}
	if s.OutputName == "" {
		return fmt.Errorf("%w: output file name is required", ErrConfig)
	}
	if strings.ContainsRune(s.OutputName, filepath.Separator) {
		return fmt.Errorf("%w: output file name %q must not contain a path separator", ErrConfig, s.OutputName)
	}
	return nil
}

// ArtifactPath is the final file location.
func (s DownloadSpec) ArtifactPath() string {
	return filepath.Join(s.OutputDir, s.OutputName)
}

// PartPath is the slot for block index, named <output_name><index>.
func (s DownloadSpec) PartPath(index int) string {
	return PartPath(s.OutputDir, s.OutputName, index)
}

func PartPath(dir, name string, index int) string {
	return filepath.Join(dir, name+strconv.Itoa(index))
}
