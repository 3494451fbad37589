package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// ErrBodyTooLarge reports a page cut off by fetcher.max_body_size.
var ErrBodyTooLarge = errors.New("body exceeds max_body_size")

// HTTPFetcher implements Fetcher with a plain HTTP client. It suits listing
// sites that render server-side and need no script execution.
type HTTPFetcher struct {
	client *http.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.FetcherConfig, logger *slog.Logger) *HTTPFetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // We handle decompression ourselves (including brotli)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.PageTimeout,
		},
		cfg:    cfg,
		logger: logger.With("component", "http_fetcher"),
	}
}

// Fetch performs a GET and returns the decoded body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: err}
	}

	ua := f.cfg.UserAgent
	if ua == "" {
		ua = "postwatch/" + config.Version
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "nb-NO,nb;q=0.9,no;q=0.8,en;q=0.6")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return "", &types.NavigationError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(body)),
		}
	}

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: err}
	}
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &types.NavigationError{URL: rawURL, Err: err}
	}
	if f.cfg.MaxBodySize > 0 && int64(len(body)) > f.cfg.MaxBodySize {
		return "", &types.NavigationError{
			URL:        rawURL,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, f.cfg.MaxBodySize),
		}
	}

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)
	return string(body), nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
