package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/IshaanNene/postwatch/internal/types"
)

const cellStyle = `style="border: 1px solid #eaeaea; padding: 8px;"`

// Subject returns the message subject for a listing.
func Subject(date string, n int) string {
	return fmt.Sprintf("Postliste %s (%d)", date, n)
}

// FormatText renders entries as "Dato/Tittel/Ansvarlig enhet" blocks.
func FormatText(entries []types.Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		block := fmt.Sprintf("Dato: %s\nTittel: %s\nAnsvarlig enhet: %s", e.Date, e.Title, e.Unit)
		if link := e.Archive(); link != "" {
			block += "\nArkivlenke: " + link
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

// FormatHTML renders entries as a bordered table. Titles keep their line breaks.
func FormatHTML(date string, entries []types.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Postliste %s</h2>\n", html.EscapeString(date))
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">` + "\n")
	fmt.Fprintf(&b, "<tr><th %[1]s>Dato</th><th %[1]s>Tittel</th><th %[1]s>Ansvarlig enhet</th><th %[1]s>Arkivlenke</th></tr>\n", cellStyle)
	for _, e := range entries {
		title := strings.ReplaceAll(html.EscapeString(e.Title), "\n", "<br>")
		link := ""
		if href := e.Archive(); href != "" {
			link = fmt.Sprintf(`<a href="%s" style="text-decoration: none; color: #007bff;">Arkiv</a>`, html.EscapeString(href))
		}
		fmt.Fprintf(&b, "<tr><td %[1]s>%[2]s</td><td %[1]s>%[3]s</td><td %[1]s>%[4]s</td><td %[1]s>%[5]s</td></tr>\n",
			cellStyle, html.EscapeString(e.Date), title, html.EscapeString(e.Unit), link)
	}
	b.WriteString("</table>\n")
	return b.String()
}

// chunk splits text on block boundaries so that no piece exceeds limit runes.
// A single oversized block is cut hard.
func chunk(text string, limit int) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, block := range strings.Split(text, "\n\n") {
		for len([]rune(block)) > limit {
			flush()
			r := []rune(block)
			out = append(out, string(r[:limit]))
			block = string(r[limit:])
		}
		sep := 0
		if cur.Len() > 0 {
			sep = 2
		}
		if len([]rune(cur.String()))+sep+len([]rune(block)) > limit {
			flush()
			sep = 0
		}
		if sep > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(block)
	}
	flush()
	return out
}
