package listing

import (
	"net/url"
	"strings"
	"time"

	"github.com/IshaanNene/postwatch/internal/types"
)

// DefaultDate returns the date the daily run asks for: two days before now,
// pushed back two more days when that lands on a weekend.
func DefaultDate(now time.Time) string {
	d := now.AddDate(0, 0, -2)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		d = d.AddDate(0, 0, -2)
	}
	return d.Format(types.DateLayout)
}

// BuildQueryURL appends the fradato filter for date to the site's search URL.
func BuildQueryURL(searchURL, date string) string {
	sep := "&"
	if !strings.Contains(searchURL, "?") {
		sep = "?"
	}
	return searchURL + sep + "fradato=" + url.QueryEscape(date) + "T00:00:00"
}
