// Package browser drives the single page the navigator scrapes through.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrNoDocument      = errors.New("no page has been loaded")
	ErrClosed          = errors.New("page is closed")
)

// TimeoutError is returned when a selector never shows up on the page.
type TimeoutError struct {
	Selector string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %q", e.After, e.Selector)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Page is one navigable surface. Calls are sequential: a Page is owned by
// a single caller and is not safe for concurrent use.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) error
	// Evaluate runs fn over every element matching selector on the current page.
	Evaluate(ctx context.Context, selector string, fn func(sel *goquery.Selection) error) error
	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	CurrentURL() string
	Close() error
}
