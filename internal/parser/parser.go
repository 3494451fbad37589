package parser

import (
	"github.com/IshaanNene/postwatch/internal/types"
)

// Extractor turns one rendered listing page into entries and finds the
// link to the following page.
type Extractor interface {
	// Extract returns the page's entries in document order. Malformed items
	// are skipped, never reported as errors.
	Extract(html string) []types.Entry

	// NextPageURL returns the absolute URL of the next page, or false on the
	// last page.
	NextPageURL(html string) (string, bool)
}
