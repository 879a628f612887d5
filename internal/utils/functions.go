package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseBlockSize accepts a plain byte count ("1048576") or a humanized
// size ("4MiB", "512KB").
func ParseBlockSize(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: block size is required", ErrConfig)
	}
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid block size %q: %v", ErrConfig, raw, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("%w: block size must be positive", ErrConfig)
	}
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: block size %q is too large", ErrConfig, raw)
	}
	return int64(size), nil
}

func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(bytes))
}

// Part is a slot found on disk for an output name.
type Part struct {
	Index int
	Path  string
}

// ListParts finds files named <name><digits> in dir, ordered by the numeric
// index. Directory order is never used.
func ListParts(dir, name string) ([]Part, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	partRegex := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `(\d+)$`)
	var parts []Part
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := partRegex.FindStringSubmatch(entry.Name())
		if len(matches) < 2 {
			continue
		}
		index, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		// "name01" is not the slot for index 1
		if strconv.Itoa(index) != matches[1] {
			continue
		}
		parts = append(parts, Part{Index: index, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Index < parts[j].Index
	})
	return parts, nil
}

// CleanParts removes part slots and temporary files left behind for name
// in dir and returns the removed paths.
func CleanParts(dir, name string) ([]string, error) {
	parts, err := ListParts(dir, name)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, part := range parts {
		if err := os.Remove(part.Path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, part.Path)
	}
	for _, suffix := range []string{WholeTempSuffix, MergeTempSuffix} {
		tempPath := filepath.Join(dir, name+suffix)
		if err := os.Remove(tempPath); err == nil {
			removed = append(removed, tempPath)
		} else if !os.IsNotExist(err) {
			return removed, err
		}
	}
	return removed, nil
}
