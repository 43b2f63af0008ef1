package olx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"olx-car-scraper/utils"
)

// FetchError reports a page that could not be retrieved. Status is zero for
// transport failures.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PageFetcher retrieves one page as parsed markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Fetcher performs one GET per call. It neither caches nor retries; retry
// policy belongs to whoever schedules the run.
type Fetcher struct {
	collector *colly.Collector
	throttle  *utils.Throttle
}

// NewFetcher builds a Fetcher with the given user agent and per-request
// timeout. Requests are spaced by throttle.
func NewFetcher(userAgent string, timeout time.Duration, throttle *utils.Throttle) *Fetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)

	if throttle == nil {
		throttle = utils.NewThrottle(0)
	}
	return &Fetcher{collector: c, throttle: throttle}
}

// Fetch downloads url and parses the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := f.throttle.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	c := f.collector.Clone()

	var (
		doc      *goquery.Document
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = &FetchError{URL: url, Status: r.StatusCode, Err: fmt.Errorf("parse body: %w", err)}
			return
		}
		doc = d
	})

	c.OnError(func(r *colly.Response, err error) {
		if fetchErr != nil {
			return
		}
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &FetchError{URL: url, Status: status, Err: err}
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = &FetchError{URL: url, Err: err}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if doc == nil {
		return nil, &FetchError{URL: url, Err: errors.New("empty response")}
	}
	return doc, nil
}
