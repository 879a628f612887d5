package rangehttp

import (
	"fmt"

	"github.com/tanq16/rangedl/internal/utils"
)

// Block is one inclusive byte range of the remote resource.
type Block struct {
	Index int
	Start int64
	End   int64
}

func (b Block) Size() int64 {
	return b.End - b.Start + 1
}

func (b Block) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", b.Start, b.End)
}

type DecisionKind int

const (
	DecisionEmpty DecisionKind = iota
	DecisionWhole
	DecisionBlocks
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionEmpty:
		return "empty"
	case DecisionWhole:
		return "whole"
	case DecisionBlocks:
		return "blocks"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is the outcome of planning. Blocks is only set for DecisionBlocks.
type Decision struct {
	Kind   DecisionKind
	Blocks []Block
}

// Plan splits contentLength into blocks of blockSize bytes. Block 0 absorbs
// the remainder so blocks 1..t-1 are exactly blockSize long and the last
// block ends at contentLength-1.
func Plan(contentLength, blockSize int64) (Decision, error) {
	if blockSize <= 0 {
		return Decision{}, fmt.Errorf("%w: block size must be positive, got %d", utils.ErrPlan, blockSize)
	}
	if contentLength < 0 {
		return Decision{}, fmt.Errorf("%w: negative content length %d", utils.ErrPlan, contentLength)
	}
	if contentLength == 0 {
		return Decision{Kind: DecisionEmpty}, nil
	}
	count := contentLength / blockSize
	if count <= 1 {
		return Decision{Kind: DecisionWhole}, nil
	}
	if count > utils.MaxBlocks {
		return Decision{}, fmt.Errorf("%w: %d bytes in blocks of %d needs %d blocks, limit is %d", utils.ErrPlan, contentLength, blockSize, count, utils.MaxBlocks)
	}
	remainder := contentLength % blockSize
	blocks := make([]Block, 0, count)
	blocks = append(blocks, Block{Index: 0, Start: 0, End: blockSize - 1 + remainder})
	for i := int64(1); i < count; i++ {
		start := i*blockSize + remainder
		blocks = append(blocks, Block{Index: int(i), Start: start, End: start + blockSize - 1})
	}
	if last := blocks[len(blocks)-1]; last.End != contentLength-1 {
		return Decision{}, fmt.Errorf("%w: last block ends at %d, expected %d", utils.ErrPlan, last.End, contentLength-1)
	}
	return Decision{Kind: DecisionBlocks, Blocks: blocks}, nil
}

// Decide picks the download path from a probe result.
func Decide(probe ProbeResult, blockSize int64) (Decision, error) {
	if probe.HasLength && probe.ContentLength == 0 {
		return Decision{Kind: DecisionEmpty}, nil
	}
	if !probe.SupportsRanges {
		if blockSize <= 0 {
			return Decision{}, fmt.Errorf("%w: block size must be positive, got %d", utils.ErrPlan, blockSize)
		}
		return Decision{Kind: DecisionWhole}, nil
	}
	return Plan(probe.ContentLength, blockSize)
}
