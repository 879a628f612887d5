package utils

import (
	"net"
	"net/http"
	"syscall"
	"time"
)

type HTTPClientConfig struct {
	Timeout        time.Duration // TLS handshake and wait for response headers
	KATimeout      time.Duration
	UserAgent      string
	HighThreadMode bool // advanced socket options for many parallel blocks
}

// RangeClient wraps two http.Clients over one transport. The probe client
// never follows redirects so the caller sees every Location hop.
type RangeClient struct {
	client *http.Client
	probe  *http.Client
	config HTTPClientConfig
}

func NewRangeClient(cfg HTTPClientConfig) *RangeClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = DefaultKATimeout
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if cfg.HighThreadMode {
		dialer.Control = func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				if err := setSocketOptions(fd); err != nil {
					logger := GetLogger("client")
					logger.Debug().Err(err).Str("address", address).Msg("Socket buffer options not applied")
				}
			})
		}
	}
	// Timeout bounds the wait for response headers only. A block or whole
	// body may take longer than that to stream.
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   min(cfg.Timeout, 30*time.Second),
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       cfg.KATimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		DisableCompression:    true, // byte counts must match Content-Length exactly
	}
	return &RangeClient{
		client: &http.Client{
			Transport: transport,
		},
		probe: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: cfg,
	}
}

func (c *RangeClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// DoNoRedirect returns 3xx responses as-is instead of following them.
func (c *RangeClient) DoNoRedirect(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.probe.Do(req)
}

func (c *RangeClient) setHeaders(req *http.Request) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
}
