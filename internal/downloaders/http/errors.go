package rangehttp

import (
	"fmt"

	"github.com/tanq16/rangedl/internal/utils"
)

// BlockError reports the block that failed during the fetch phase.
type BlockError struct {
	Index int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("fetch error: block %d: %v", e.Index, e.Err)
}

func (e *BlockError) Unwrap() []error {
	return []error{utils.ErrFetch, e.Err}
}

// MergeError is returned when the parts do not add up to the expected
// length. No artifact is written and the parts stay on disk.
type MergeError struct {
	Expected int64
	Actual   int64
	Missing  int // index of the first missing part, -1 when none is missing
}

func (e *MergeError) Error() string {
	if e.Missing >= 0 {
		return fmt.Sprintf("merge error: part %d is missing", e.Missing)
	}
	return fmt.Sprintf("merge error: reassembled %d bytes, expected %d", e.Actual, e.Expected)
}

func (e *MergeError) Is(target error) bool {
	return target == utils.ErrMerge
}
