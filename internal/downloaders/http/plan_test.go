package rangehttp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/rangedl/internal/utils"
)

func TestPlan_RemainderGoesToFirstBlock(t *testing.T) {
	decision, err := Plan(1000, 300)
	require.NoError(t, err)
	assert.Equal(t, DecisionBlocks, decision.Kind)
	assert.Equal(t, []Block{
		{Index: 0, Start: 0, End: 399},
		{Index: 1, Start: 400, End: 699},
		{Index: 2, Start: 700, End: 999},
	}, decision.Blocks)
}

func TestPlan_Decisions(t *testing.T) {
	tests := []struct {
		name          string
		contentLength int64
		blockSize     int64
		expected      DecisionKind
	}{
		{"empty resource", 0, 100, DecisionEmpty},
		{"smaller than one block", 10, 100, DecisionWhole},
		{"exactly one block", 100, 100, DecisionWhole},
		{"one block plus remainder", 199, 100, DecisionWhole},
		{"two blocks", 200, 100, DecisionBlocks},
		{"two blocks plus remainder", 299, 100, DecisionBlocks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Plan(tt.contentLength, tt.blockSize)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decision.Kind)
			if tt.expected != DecisionBlocks {
				assert.Empty(t, decision.Blocks)
			}
		})
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		contentLength int64
		blockSize     int64
	}{
		{"zero block size", 100, 0},
		{"negative block size", 100, -4},
		{"negative content length", -1, 10},
		{"one block over the limit", utils.MaxBlocks + 1, 1},
		{"huge advertised length", 1 << 50, 1},
		{"max length", math.MaxInt64, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.contentLength, tt.blockSize)
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrPlan)
		})
	}
}

func TestPlan_AtBlockLimit(t *testing.T) {
	decision, err := Plan(utils.MaxBlocks*10, 10)
	require.NoError(t, err)
	assert.Len(t, decision.Blocks, utils.MaxBlocks)
}

func TestDecide_HugeLengthIsPlanError(t *testing.T) {
	probe := ProbeResult{ContentLength: 1 << 50, HasLength: true, SupportsRanges: true}
	_, err := Decide(probe, 1)
	assert.ErrorIs(t, err, utils.ErrPlan)
}

func TestPlan_PartitionCoversWholeRange(t *testing.T) {
	for _, blockSize := range []int64{1, 2, 3, 7, 64, 300, 1000} {
		for _, contentLength := range []int64{2, 3, 5, 64, 100, 999, 1000, 1001, 4097, 65537} {
			if contentLength/blockSize <= 1 {
				continue
			}
			decision, err := Plan(contentLength, blockSize)
			require.NoError(t, err)
			require.Equal(t, DecisionBlocks, decision.Kind)
			blocks := decision.Blocks

			require.Len(t, blocks, int(contentLength/blockSize))
			assert.EqualValues(t, 0, blocks[0].Start)
			assert.Equal(t, contentLength-1, blocks[len(blocks)-1].End,
				"last block must end at content length - 1 (length=%d block=%d)", contentLength, blockSize)

			var covered int64
			for i, block := range blocks {
				assert.Equal(t, i, block.Index)
				assert.LessOrEqual(t, block.Start, block.End)
				if i > 0 {
					assert.Equal(t, blocks[i-1].End+1, block.Start, "blocks must be contiguous and disjoint")
					assert.Equal(t, blockSize, block.Size())
				}
				covered += block.Size()
			}
			assert.Equal(t, contentLength, covered)
		}
	}
}

func TestBlock_RangeHeader(t *testing.T) {
	block := Block{Index: 2, Start: 700, End: 999}
	assert.Equal(t, "bytes=700-999", block.RangeHeader())
	assert.EqualValues(t, 300, block.Size())
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		probe    ProbeResult
		expected DecisionKind
	}{
		{
			name:     "ranges unsupported with large length",
			probe:    ProbeResult{ContentLength: 1 << 30, HasLength: true, SupportsRanges: false},
			expected: DecisionWhole,
		},
		{
			name:     "unknown length",
			probe:    ProbeResult{HasLength: false},
			expected: DecisionWhole,
		},
		{
			name:     "empty without range support",
			probe:    ProbeResult{ContentLength: 0, HasLength: true},
			expected: DecisionEmpty,
		},
		{
			name:     "empty with range support",
			probe:    ProbeResult{ContentLength: 0, HasLength: true, SupportsRanges: true},
			expected: DecisionEmpty,
		},
		{
			name:     "small with range support",
			probe:    ProbeResult{ContentLength: 10, HasLength: true, SupportsRanges: true},
			expected: DecisionWhole,
		},
		{
			name:     "large with range support",
			probe:    ProbeResult{ContentLength: 1000, HasLength: true, SupportsRanges: true},
			expected: DecisionBlocks,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Decide(tt.probe, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, decision.Kind)
		})
	}
}

func TestDecisionKind_String(t *testing.T) {
	assert.Equal(t, "empty", DecisionEmpty.String())
	assert.Equal(t, "whole", DecisionWhole.String())
	assert.Equal(t, "blocks", DecisionBlocks.String())
	assert.Equal(t, "DecisionKind(9)", DecisionKind(9).String())
}
