package rangehttp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tanq16/rangedl/internal/utils"
)

// ProbeResult is produced once per run and not modified afterwards.
type ProbeResult struct {
	FinalURI       string
	ContentLength  int64
	HasLength      bool
	SupportsRanges bool
	Hops           int
}

type Prober struct {
	client       *utils.RangeClient
	maxRedirects int
}

func NewProber(client *utils.RangeClient, maxRedirects int) *Prober {
	if maxRedirects < 0 {
		maxRedirects = 0
	}
	return &Prober{client: client, maxRedirects: maxRedirects}
}

// Probe issues HEAD requests, following Location headers for at most
// maxRedirects hops, and reports length and range support of the final target.
func (p *Prober) Probe(ctx context.Context, uri string) (ProbeResult, error) {
	log := utils.GetLogger("probe")
	current := uri
	for hops := 0; hops <= p.maxRedirects; hops++ {
		resp, err := p.head(ctx, current)
		if err != nil {
			return ProbeResult{}, err
		}
		if location := resp.Header.Get("Location"); location != "" {
			next, err := resolveLocation(current, location)
			if err != nil {
				return ProbeResult{}, err
			}
			log.Debug().Str("from", current).Str("to", next).Int("status", resp.StatusCode).Int("hop", hops+1).Msg("Following redirect")
			current = next
			continue
		}
		if resp.StatusCode >= 400 {
			return ProbeResult{}, fmt.Errorf("%w: %s returned status %d", utils.ErrProbe, current, resp.StatusCode)
		}
		length, hasLength, err := parseContentLength(resp)
		if err != nil {
			return ProbeResult{}, err
		}
		result := ProbeResult{
			FinalURI:       current,
			ContentLength:  length,
			HasLength:      hasLength,
			SupportsRanges: resp.Header.Get("Accept-Ranges") == "bytes" && hasLength,
			Hops:           hops,
		}
		log.Debug().Str("uri", current).Int64("length", length).Bool("hasLength", hasLength).Bool("ranges", result.SupportsRanges).Int("hops", hops).Msg("Probe complete")
		return result, nil
	}
	return ProbeResult{}, fmt.Errorf("%w: more than %d hops starting at %s", utils.ErrTooManyRedirects, p.maxRedirects, uri)
}

func (p *Prober) head(ctx context.Context, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating HEAD request: %v", utils.ErrProbe, err)
	}
	resp, err := p.client.DoNoRedirect(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HEAD %s: %v", utils.ErrProbe, uri, err)
	}
	resp.Body.Close()
	return resp, nil
}

// resolveLocation allows relative Location values.
func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("%w: invalid uri %q: %v", utils.ErrProbe, current, err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: malformed Location header %q: %v", utils.ErrProbe, location, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func parseContentLength(resp *http.Response) (int64, bool, error) {
	if raw := resp.Header.Get("Content-Length"); raw != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || n < 0 {
			return 0, false, fmt.Errorf("%w: malformed Content-Length header %q", utils.ErrProbe, raw)
		}
		return n, true, nil
	}
	if resp.ContentLength >= 0 {
		return resp.ContentLength, true, nil
	}
	return 0, false, nil
}
