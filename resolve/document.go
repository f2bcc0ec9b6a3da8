package resolve

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pricewatch"
)

// Document is one parsed listing page. Parsing happens once per resolution
// and every strategy queries the same tree. A Document is owned by the
// resolution call that produced it and is not safe for concurrent use.
type Document struct {
	URL   string
	Title string

	doc *goquery.Document

	rawHTML     string
	visible     string
	visibleDone bool
}

// ParsePage parses a fetched page into a Document. The title is read from
// the first <title> element.
func ParsePage(page *pricewatch.Page) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "failed to parse HTML: %v", err)
	}

	return &Document{
		URL:     page.URL,
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		doc:     doc,
		rawHTML: page.HTML,
	}, nil
}

// Find returns the selection matching a CSS selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// VisibleText returns the page's rendered text with script, style, noscript
// and template subtrees skipped. Computed lazily so resolutions that
// succeed on an earlier strategy never pay for the walk.
func (d *Document) VisibleText() string {
	if !d.visibleDone {
		d.visible = visibleText(d.rawHTML)
		d.visibleDone = true
	}
	return d.visible
}

// visibleText walks the markup with a tokenizer and collects text nodes
// outside non-rendered subtrees, joining them with single spaces.
func visibleText(rawHTML string) string {
	var b strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

// skippedTag reports whether a tag's subtree never renders as visible text.
func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
