package rangehttp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tanq16/rangedl/internal/utils"
)

// Merge concatenates the part slots 0..parts-1 of name in dir into the
// artifact dir/name. The slot index decides the order. The summed part size
// is checked against expected before anything is written; on mismatch a
// *MergeError is returned and the parts are left in place. Parts are only
// removed after the artifact has been renamed into place.
func Merge(dir, name string, parts int, expected int64) (int64, error) {
	log := utils.GetLogger("merge")
	paths := make([]string, parts)
	var total int64
	for i := range parts {
		paths[i] = utils.PartPath(dir, name, i)
		info, err := os.Stat(paths[i])
		if errors.Is(err, os.ErrNotExist) {
			return 0, &MergeError{Expected: expected, Actual: total, Missing: i}
		} else if err != nil {
			return 0, fmt.Errorf("%w: error reading part %d: %v", utils.ErrMerge, i, err)
		}
		total += info.Size()
	}
	if total != expected {
		log.Debug().Int64("expected", expected).Int64("actual", total).Int("parts", parts).Msg("Part sizes do not add up")
		return 0, &MergeError{Expected: expected, Actual: total, Missing: -1}
	}

	artifactPath := filepath.Join(dir, name)
	tempPath := artifactPath + utils.MergeTempSuffix
	written, err := concatParts(tempPath, paths)
	if err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("%w: %v", utils.ErrMerge, err)
	}
	if written != expected {
		os.Remove(tempPath)
		return 0, &MergeError{Expected: expected, Actual: written, Missing: -1}
	}
	if err := os.Rename(tempPath, artifactPath); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("%w: error finalizing %s: %v", utils.ErrMerge, artifactPath, err)
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("part", path).Msg("Could not remove part")
		}
	}
	log.Debug().Int64("bytes", written).Int("parts", parts).Str("path", artifactPath).Msg("Merge complete")
	return written, nil
}

func concatParts(destPath string, paths []string) (int64, error) {
	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error creating %s: %v", destPath, err)
	}
	var total int64
	for i, path := range paths {
		written, err := copyPart(dest, path)
		total += written
		if err != nil {
			dest.Close()
			return total, fmt.Errorf("error copying part %d: %v", i, err)
		}
	}
	if err := dest.Sync(); err != nil {
		dest.Close()
		return total, err
	}
	return total, dest.Close()
}

func copyPart(dest io.Writer, path string) (int64, error) {
	part, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer part.Close()
	return io.Copy(dest, part)
}
