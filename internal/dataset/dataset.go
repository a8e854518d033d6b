// Package dataset loads the release-season table behind the site's charts.
//
// A source is either an http(s) URL or a path. Paths are resolved against the
// Loader's filesystem (the embedded web assets when serving) or, when no
// filesystem is set, the local disk. Loads are single-shot: no retry, no cache.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lightscameradata/boxoffice/pkg/models"
)

// ErrNotFound is returned when the source does not exist (missing file or HTTP 404).
var ErrNotFound = errors.New("dataset not found")

// ErrFetch is returned for any other failed HTTP fetch.
var ErrFetch = errors.New("dataset fetch failed")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Is lets callers match HTTP failures against ErrNotFound and ErrFetch.
func (e *ErrHTTP) Is(target error) bool {
	if target == ErrNotFound {
		return e.StatusCode == http.StatusNotFound
	}
	return target == ErrFetch
}

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 15 * time.Second

// Loader fetches and parses datasets.
type Loader struct {
	FS      fs.FS        // optional; paths are opened from here when set
	Client  *http.Client // used for http(s) sources
	Timeout time.Duration
}

// NewLoader creates a loader reading paths from fsys (nil means local disk).
func NewLoader(fsys fs.FS, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{
		FS:      fsys,
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Load fetches source and parses it into a Dataset. Any failure rejects the
// whole load; no partial dataset is ever returned.
func (l *Loader) Load(ctx context.Context, source string) (*models.Dataset, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	stats, err := ParseCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return &models.Dataset{Source: source, Stats: stats}, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isURL(source) {
		return l.get(ctx, source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		f   io.ReadCloser
		err error
	)
	if l.FS != nil {
		f, err = l.FS.Open(strings.TrimPrefix(source, "/"))
	} else {
		f, err = os.Open(source)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", source, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return f, nil
}

// get performs a GET request, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func (l *Loader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w: %w", url, ErrFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP GET %s: %w", url, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	return resp.Body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
