package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Selectors locate the fields of one postliste item.
type Selectors struct {
	Item        string
	Title       string
	ArchiveLink string
	DocLink     string
	NextPage    string
	DateLabel   string
	UnitLabel   string
}

// DefaultSelectors match the journalpost listing markup.
var DefaultSelectors = Selectors{
	Item:        "li.np.i-par.i-jp",
	Title:       "h3 > a.content-link",
	ArchiveLink: `a.content-link[href*="arkivsak_detaljer"]`,
	DocLink:     `a.blank[href*="wfdocument.ashx"]`,
	NextPage:    `ul.pagination li a.content-link[href*="startrow"]`,
	DateLabel:   "Journaldato",
	UnitLabel:   "Ansvarlig enhet",
}

// PostlistExtractor implements Extractor for the postliste markup.
// Archive and pagination links resolve against the site origin, document
// links against the separate document host.
type PostlistExtractor struct {
	sel            Selectors
	origin         *url.URL
	documentOrigin *url.URL
	logger         *slog.Logger
}

// NewPostlistExtractor creates an extractor for the configured site.
func NewPostlistExtractor(site *config.SiteConfig, logger *slog.Logger) (*PostlistExtractor, error) {
	origin, err := url.Parse(site.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse site origin: %w", err)
	}
	docOrigin, err := url.Parse(site.DocumentOrigin)
	if err != nil {
		return nil, fmt.Errorf("parse document origin: %w", err)
	}

	sel := DefaultSelectors
	if site.ItemSelector != "" {
		sel.Item = site.ItemSelector
	}

	return &PostlistExtractor{
		sel:            sel,
		origin:         origin,
		documentOrigin: docOrigin,
		logger:         logger.With("component", "postlist_extractor"),
	}, nil
}

// Extract implements Extractor.
func (x *PostlistExtractor) Extract(body string) []types.Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		x.logger.Warn("unparsable page", "error", err)
		return nil
	}

	var entries []types.Entry
	doc.Find(x.sel.Item).Each(func(i int, item *goquery.Selection) {
		entry, ok := x.extractItem(i, item)
		if ok {
			entries = append(entries, entry)
		}
	})
	return entries
}

// extractItem isolates one item: a failure here only drops this item.
func (x *PostlistExtractor) extractItem(i int, item *goquery.Selection) (entry types.Entry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.Warn("item extraction panicked", "index", i, "panic", r)
			entry, ok = types.Entry{}, false
		}
	}()

	node := item.Get(0)
	date := labeledValue(node, x.sel.DateLabel)
	unit := labeledValue(node, x.sel.UnitLabel)
	title := strings.TrimSpace(item.Find(x.sel.Title).First().Text())

	archiveHref, _ := item.Find(x.sel.ArchiveLink).First().Attr("href")
	docHref, _ := item.Find(x.sel.DocLink).First().Attr("href")

	entry, ok = types.NewEntry(
		date,
		title,
		unit,
		resolve(x.origin, archiveHref),
		resolve(x.documentOrigin, docHref),
	)
	if !ok {
		x.logger.Debug("item skipped, missing required field",
			"index", i, "date", date, "title", title, "unit", unit)
	}
	return entry, ok
}

// NextPageURL implements Extractor. The last pagination link carrying a
// startrow parameter points forward.
func (x *PostlistExtractor) NextPageURL(body string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	href, exists := doc.Find(x.sel.NextPage).Last().Attr("href")
	if !exists {
		return "", false
	}
	next := resolve(x.origin, href)
	return next, next != ""
}

// labeledValue returns the text of the <strong> element directly following
// a <span> whose text contains label.
func labeledValue(item *html.Node, label string) string {
	expr := fmt.Sprintf(`.//span[contains(normalize-space(.), %s)]/following-sibling::*[1][self::strong]`, xpathLiteral(label))
	node, err := htmlquery.Query(item, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

// resolve makes href absolute against base. Blank or unparsable hrefs yield "".
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
