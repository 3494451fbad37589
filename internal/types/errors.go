package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrPageLimit = errors.New("page limit reached before listing ended")
	ErrEmptyURL  = errors.New("empty URL")
)

// InvalidDateError reports a date that is not a valid ISO-8601 calendar date.
// It is always returned before any network activity.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *InvalidDateError) Unwrap() error { return e.Err }

// NavigationError wraps a failure to load or render a page.
type NavigationError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NavigationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("navigation error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("navigation error for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// FetchFailedError is the service-level failure for one listing query.
type FetchFailedError struct {
	Date string
	Err  error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch listing for %s: %v", e.Date, e.Err)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

// NotifyError wraps a notifier delivery failure.
type NotifyError struct {
	Notifier string
	Date     string
	Err      error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify (%s) for %s: %v", e.Notifier, e.Date, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while archiving a listing.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
