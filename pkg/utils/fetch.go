// Package utils provides HTTP fetch helpers, a badger-backed disk cache and
// call rate limiting for the threat-globe tools.
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sudorandom/threat-globe/pkg/logging"
)

var ErrNotFound = errors.New("file not found on server")

// DefaultClient is used when callers pass a nil client.
var DefaultClient = &http.Client{Timeout: 30 * time.Second}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logging.Warn().Err(err).Msg("error closing response body")
	}
}

// OpenURL issues a GET for url and returns the body of a 2xx response. A 404 is
// reported as ErrNotFound.
func OpenURL(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		closeBody(resp)
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

// Fetch returns the full body of url.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	body, err := OpenURL(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing response body")
		}
	}()
	return io.ReadAll(body)
}

// DownloadFile saves the body of url to path and returns its size. The file is
// written next to path and renamed into place, so path is either the old
// content or the complete new body.
func DownloadFile(ctx context.Context, client *http.Client, url, path string) (int64, error) {
	body, err := OpenURL(ctx, client, url)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := body.Close(); err != nil {
			logging.Warn().Err(err).Msg("error closing response body")
		}
	}()

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	partial := f.Name()
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(partial, path)
	}
	if err != nil {
		if rerr := os.Remove(partial); rerr != nil && !os.IsNotExist(rerr) {
			logging.Warn().Err(rerr).Str("file", partial).Msg("error removing partial download")
		}
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	logging.Info().Str("url", url).Str("file", path).Str("size", humanize.Bytes(uint64(n))).Msg("downloaded")
	return n, nil
}

// IsURL reports whether src names an http or https resource.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ReadSource reads src, which is an http(s) URL, "-" for stdin, or a file path.
func ReadSource(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	switch {
	case src == "-":
		return io.ReadAll(os.Stdin)
	case IsURL(src):
		return Fetch(ctx, client, src)
	default:
		return os.ReadFile(src)
	}
}
