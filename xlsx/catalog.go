// Package xlsx reads product catalogs from Excel workbooks.
package xlsx

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"pricewatch"
)

// Ensure CatalogSource implements pricewatch.CatalogSource at compile time.
var _ pricewatch.CatalogSource = (*CatalogSource)(nil)

// CatalogSource loads a catalog from the first worksheet of an .xlsx
// workbook. The first row is the header: three identity columns followed by
// one column per retailer. Only cell text is read; styles and formulas are
// ignored.
type CatalogSource struct {
	path string
}

// NewCatalogSource creates a CatalogSource reading the workbook at path.
func NewCatalogSource(path string) *CatalogSource {
	return &CatalogSource{path: path}
}

// Load reads and validates the catalog.
func (s *CatalogSource) Load(ctx context.Context) (*pricewatch.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(s.path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, pricewatch.Errorf(pricewatch.EINVALID, "%s is not an xlsx workbook", s.path)
		}
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer zr.Close()

	shared, err := sharedStrings(zr)
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parse workbook %s: %s", s.path, err)
	}

	sheet := sheetFile(zr)
	if sheet == nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "workbook %s has no worksheets", s.path)
	}

	doc, err := readXML(sheet)
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parse workbook %s: %s", s.path, err)
	}

	var rows [][]string
	if sheetData := doc.Root().SelectElement("sheetData"); sheetData != nil {
		for _, row := range sheetData.SelectElements("row") {
			cells, err := rowCells(row, shared)
			if err != nil {
				return nil, pricewatch.Errorf(pricewatch.EINVALID, "parse workbook %s: %s", s.path, err)
			}
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "workbook %s is empty", s.path)
	}

	catalog, err := pricewatch.NewCatalog(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return catalog, nil
}

// sheetFile locates the first worksheet part. Workbooks keep it at
// sheet1.xml unless sheets were reordered; fall back to the lexically first
// sheet part rather than chasing workbook relationship IDs.
func sheetFile(zr *zip.ReadCloser) *zip.File {
	if f := zipFile(zr, "xl/worksheets/sheet1.xml"); f != nil {
		return f
	}

	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return zipFile(zr, names[0])
}

// sharedStrings parses the workbook's shared string table. Workbooks whose
// cells are all inline or numeric omit the table entirely.
func sharedStrings(zr *zip.ReadCloser) ([]string, error) {
	f := zipFile(zr, "xl/sharedStrings.xml")
	if f == nil {
		return nil, nil
	}

	doc, err := readXML(f)
	if err != nil {
		return nil, err
	}

	var strs []string
	for _, si := range doc.Root().SelectElements("si") {
		strs = append(strs, textOf(si))
	}
	return strs, nil
}

// rowCells extracts the text of every cell in a row, placing each at the
// column its A1-style reference names so omitted cells read as empty.
// Trailing empties are dropped; stray formatting in far columns would
// otherwise widen the row past the header.
func rowCells(row *etree.Element, shared []string) ([]string, error) {
	var cells []string
	for _, c := range row.SelectElements("c") {
		idx := columnIndex(c.SelectAttrValue("r", ""))
		if idx < 0 {
			// A cell without a reference follows the previous one.
			idx = len(cells)
		}
		for len(cells) <= idx {
			cells = append(cells, "")
		}

		value, err := cellValue(c, shared)
		if err != nil {
			return nil, err
		}
		cells[idx] = value
	}

	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells, nil
}

// cellValue resolves a cell to its text. Shared strings, inline strings,
// formula string results, and raw numerics are the shapes catalogs produce.
func cellValue(cell *etree.Element, shared []string) (string, error) {
	switch t := cell.SelectAttrValue("t", ""); t {
	case "s":
		v := cell.SelectElement("v")
		if v == nil {
			return "", nil
		}
		idx, err := strconv.Atoi(strings.TrimSpace(v.Text()))
		if err != nil || idx < 0 || idx >= len(shared) {
			return "", fmt.Errorf("shared string index %q out of range", strings.TrimSpace(v.Text()))
		}
		return shared[idx], nil

	case "inlineStr":
		is := cell.SelectElement("is")
		if is == nil {
			return "", nil
		}
		return textOf(is), nil

	default:
		v := cell.SelectElement("v")
		if v == nil {
			return "", nil
		}
		raw := strings.TrimSpace(v.Text())
		if t == "" || t == "n" {
			// Numeric storage can carry spurious precision ("2.50") or
			// scientific notation; render the value a person would type.
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64), nil
			}
		}
		return raw, nil
	}
}

// textOf concatenates the text of an element's t descendants, joining the
// runs of rich text into one string.
func textOf(el *etree.Element) string {
	var b strings.Builder
	collectText(el, &b)
	return b.String()
}

func collectText(el *etree.Element, b *strings.Builder) {
	if el.Tag == "t" {
		b.WriteString(el.Text())
		return
	}
	for _, child := range el.ChildElements() {
		collectText(child, b)
	}
}

// columnIndex converts the column letters of an A1-style reference to a
// zero-based column index. Returns -1 when the reference has no letters.
func columnIndex(ref string) int {
	n := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}

func zipFile(zr *zip.ReadCloser, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readXML(f *zip.File) (*etree.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("missing root element in " + f.Name)
	}
	return doc, nil
}
