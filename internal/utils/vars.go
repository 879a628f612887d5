package utils

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultBlockSize    = 8 * 1024 * 1024 // 8MiB
	DefaultWorkers      = 8
	DefaultRetries      = 3
	DefaultMaxRedirects = 10
	DefaultTimeout      = 3 * time.Minute
	DefaultKATimeout    = 90 * time.Second
	ToolUserAgent       = "rangedl"

	// MaxBlocks bounds the part files a single plan may create
	MaxBlocks = 100_000

	// suffixes for in-progress files next to the artifact
	WholeTempSuffix = ".download"
	MergeTempSuffix = ".merge"
)

// Error kinds. Concrete errors wrap one of these so callers can use errors.Is.
var (
	ErrConfig = errors.New("config error")
	ErrProbe  = errors.New("probe error")
	ErrPlan   = errors.New("plan error")
	ErrFetch  = errors.New("fetch error")
	ErrMerge  = errors.New("merge error")

	ErrTooManyRedirects = fmt.Errorf("%w: too many redirects", ErrProbe)
)
