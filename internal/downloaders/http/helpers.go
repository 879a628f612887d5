package rangehttp

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

var retryBackoff = 500 * time.Millisecond

// waitBackoff sleeps (attempt+1) * retryBackoff unless ctx ends first.
func waitBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt+1) * retryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// writeBody streams body into path, truncating whatever was there.
func writeBody(path string, body io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error opening %s: %v", path, err)
	}
	written, err := io.Copy(file, body)
	if err != nil {
		file.Close()
		return written, fmt.Errorf("error writing %s: %v", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return written, fmt.Errorf("error syncing %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("error closing %s: %v", path, err)
	}
	return written, nil
}
