package fs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"pricewatch"
)

// Ensure Archiver implements pricewatch.Archiver at compile time.
var _ pricewatch.Archiver = (*Archiver)(nil)

// Archiver stores snapshots of pages the pipeline could not price, as
// markdown files named after the failing product. A directory listing then
// reads as the list of products needing attention; successive failures for
// the same product overwrite, keeping only the latest evidence.
type Archiver struct {
	dir       string
	converter pricewatch.Converter
}

// NewArchiver creates an Archiver writing snapshots under dir.
func NewArchiver(dir string, converter pricewatch.Converter) *Archiver {
	return &Archiver{dir: dir, converter: converter}
}

// nonWord matches every run of characters unsafe in a file name.
var nonWord = regexp.MustCompile(`\W+`)

// SnapshotName derives the snapshot file name for a product. The name is
// sanitized and truncated so the worst catalog entry still yields a short,
// safe file name.
func SnapshotName(product string) string {
	safe := nonWord.ReplaceAllString(product, "_")
	if len(safe) > 15 {
		safe = safe[:15]
	}
	return "error_" + safe + ".md"
}

// FormatSnapshot formats a snapshot with YAML frontmatter.
func FormatSnapshot(rec *pricewatch.PriceRecord, markdown string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("url: ")
	b.WriteString(rec.URL)
	b.WriteString("\nretailer: ")
	b.WriteString(rec.Retailer)
	b.WriteString("\nstatus: ")
	b.WriteString(string(rec.Price.Status))
	b.WriteString("\nchecked: ")
	b.WriteString(rec.CheckedAt.Format(pricewatch.TimestampLayout))
	b.WriteString("\n---\n\n")
	b.WriteString(markdown)
	return b.String()
}

// Archive converts the page to markdown and writes the snapshot.
// A nil page or a page with no HTML is silently ignored.
func (a *Archiver) Archive(ctx context.Context, rec *pricewatch.PriceRecord, page *pricewatch.Page) error {
	if page == nil || page.HTML == "" {
		return nil
	}

	markdown, err := a.converter.Convert(page.HTML)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(a.dir, SnapshotName(rec.Product))
	return os.WriteFile(path, []byte(FormatSnapshot(rec, markdown)), 0644)
}
