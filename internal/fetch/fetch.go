// Package fetch retrieves the raw spreadsheet export over HTTP, trying an
// ordered list of candidate endpoints until one answers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrNoCandidates is returned when Fetch is called without URLs.
	ErrNoCandidates = errors.New("no candidate URLs")
	// ErrAllCandidatesFailed wraps the last error after every candidate failed.
	ErrAllCandidatesFailed = errors.New("all candidate URLs failed")
	// ErrUnexpectedStatus marks a terminal non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// DefaultEndpoints are the Google Sheets CSV export formats, in the order
// they are tried. {sheet} and {gid} are replaced by [CandidateURLs].
var DefaultEndpoints = []string{
	"https://docs.google.com/spreadsheets/d/{sheet}/export?format=csv&gid={gid}",
	"https://docs.google.com/spreadsheets/d/{sheet}/gviz/tq?tqx=out:csv&gid={gid}",
	"https://docs.google.com/spreadsheets/d/{sheet}/export?format=csv",
}

// CandidateURLs expands endpoint templates for one sheet. Templates without
// placeholders are returned as-is.
func CandidateURLs(templates []string, sheetID, gid string) []string {
	r := strings.NewReplacer(
		"{sheet}", url.PathEscape(sheetID),
		"{gid}", url.QueryEscape(gid),
	)

	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, r.Replace(tmpl))
	}

	return out
}

// AttemptFunc observes each candidate as it finishes. err is nil for the
// candidate that succeeded.
type AttemptFunc func(index int, url string, err error)

// Fetcher downloads a document body from the first candidate that answers
// with a 2xx status.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher using a copy of client (or a zero [http.Client] when
// nil). Redirects are handled by the Fetcher itself, so the copy's
// CheckRedirect is replaced.
func New(client *http.Client) *Fetcher {
	var c http.Client
	if client != nil {
		c = *client
	}

	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Fetcher{client: &c}
}

// Fetch tries urls strictly in order and returns the first body retrieved.
//
// A 3xx response with a Location header is followed in place of the current
// candidate and never counts as a failure. A terminal non-2xx response or a
// transport error fails the candidate and the next one is tried; each
// candidate gets exactly one attempt. When all fail, the returned error wraps
// [ErrAllCandidatesFailed] and the last candidate's error.
func (f *Fetcher) Fetch(ctx context.Context, urls []string, onAttempt AttemptFunc) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoCandidates
	}

	var lastErr error

	for i, candidate := range urls {
		body, err := f.get(ctx, candidate)

		if onAttempt != nil {
			onAttempt(i, candidate, err)
		}

		if err == nil {
			return body, nil
		}

		lastErr = err
	}

	return "", fmt.Errorf("%w: %w", ErrAllCandidatesFailed, lastErr)
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return "", err
		}

		if isRedirect(resp.StatusCode) {
			loc, locErr := resp.Location()

			discard(resp)

			if locErr == nil {
				target = loc.String()

				continue
			}

			return "", fmt.Errorf("%w: %s without Location from %s", ErrUnexpectedStatus, resp.Status, target)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			discard(resp)

			return "", fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, target)
		}

		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			return "", fmt.Errorf("read body from %s: %w", target, err)
		}

		return string(data), nil
	}
}

func isRedirect(code int) bool {
	return code >= http.StatusMultipleChoices && code < http.StatusBadRequest
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
