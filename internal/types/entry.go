package types

import (
	"regexp"
	"strings"
)

// Entry is one record of the public records listing.
type Entry struct {
	// Date is the journal date as rendered by the source site.
	Date string `json:"date" bson:"date"`

	// Title is stored raw and may contain line breaks.
	Title string `json:"title" bson:"title"`

	// Unit is the responsible organizational unit.
	Unit string `json:"unit" bson:"unit"`

	// ArchiveLink points to the case-file detail page.
	ArchiveLink *string `json:"archiveLink" bson:"archive_link"`

	// DocumentLink points to the source document.
	DocumentLink *string `json:"documentLink" bson:"document_link"`
}

// NewEntry builds an Entry, returning false when a required field is blank.
// Empty links become nil.
func NewEntry(date, title, unit, archiveLink, documentLink string) (Entry, bool) {
	date = strings.TrimSpace(date)
	title = strings.TrimSpace(title)
	unit = strings.TrimSpace(unit)
	if date == "" || title == "" || unit == "" {
		return Entry{}, false
	}
	return Entry{
		Date:         date,
		Title:        title,
		Unit:         unit,
		ArchiveLink:  optional(archiveLink),
		DocumentLink: optional(documentLink),
	}, true
}

var titleBreaks = regexp.MustCompile(`\s*(\r?\n|\\n|<br\s*/?>)+\s*`)

// DisplayTitle returns the title with line breaks and stray separator
// sequences folded into single " / " separators.
func (e Entry) DisplayTitle() string {
	return titleBreaks.ReplaceAllString(e.Title, " / ")
}

// Archive returns the archive link or "".
func (e Entry) Archive() string {
	if e.ArchiveLink == nil {
		return ""
	}
	return *e.ArchiveLink
}

// Document returns the document link or "".
func (e Entry) Document() string {
	if e.DocumentLink == nil {
		return ""
	}
	return *e.DocumentLink
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
