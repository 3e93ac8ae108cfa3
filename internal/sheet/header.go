// Package sheet holds the header contract for the target sheet: the ordered
// column list a deployment uses, the guard that keeps the remote header in
// sync with it, the row builder that composes cells in header order, and the
// sink that appends finished rows.
package sheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/sheetdrop/sheetdrop/internal/model"
)

// Placeholder is written into any cell whose draft field is blank, keeping
// column alignment instead of omitting the value.
const Placeholder = "N/A"

// HeaderSpec is the ordered column-name contract for the sheet's header row.
// One spec is selected per deployment; historical layout drift is not unified
// automatically.
type HeaderSpec []string

// DefaultHeader matches the canonical eight-column feedback layout.
var DefaultHeader = HeaderSpec{
	"POC", "Team", "Date", "Product", "Feedback", "Description", "Impact", "Attachments",
}

// ParseHeaderSpec splits a comma-separated column list, trimming whitespace.
func ParseHeaderSpec(raw string) (HeaderSpec, error) {
	parts := strings.Split(raw, ",")
	spec := make(HeaderSpec, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, fmt.Errorf("header spec %q contains an empty column name", raw)
		}
		spec = append(spec, name)
	}
	return spec, nil
}

// Equal reports whether cells match the spec cell-wise, including length.
func (h HeaderSpec) Equal(cells []string) bool {
	if len(cells) != len(h) {
		return false
	}
	for i, name := range h {
		if cells[i] != name {
			return false
		}
	}
	return true
}

// RowInput carries the draft plus the cells the pipeline computes before row
// composition: the joined attachment links and the partner-flag value.
type RowInput struct {
	Draft       model.Draft
	Attachments string
	PartnerFlag string
}

// columnCells maps each registered column name to how its cell is produced.
// A deployment's HeaderSpec may use any subset of these, in any order.
var columnCells = map[string]func(RowInput) string{
	"POC":              func(in RowInput) string { return orPlaceholder(in.Draft.POC) },
	"Team":             func(in RowInput) string { return orPlaceholder(in.Draft.Team) },
	"Date":             func(in RowInput) string { return dateCell(in.Draft.Date) },
	"Product":          func(in RowInput) string { return orPlaceholder(in.Draft.Product) },
	"Feedback":         func(in RowInput) string { return orPlaceholder(in.Draft.Feedback) },
	"Description":      func(in RowInput) string { return orPlaceholder(in.Draft.Description) },
	"Impact":           func(in RowInput) string { return orPlaceholder(in.Draft.Impact) },
	"Attachments":      func(in RowInput) string { return orPlaceholder(in.Attachments) },
	"Warehouse":        func(in RowInput) string { return orPlaceholder(in.Draft.Warehouse) },
	"Partner Notified": func(in RowInput) string { return orPlaceholder(in.PartnerFlag) },
}

// RowBuilder composes rows in the exact order of its HeaderSpec. Construction
// fails on unknown column names so a header/row mismatch is caught at startup,
// not at the first append.
type RowBuilder struct {
	header HeaderSpec
}

// NewRowBuilder validates the spec against the registered columns.
func NewRowBuilder(header HeaderSpec) (*RowBuilder, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("header spec is empty")
	}
	for _, name := range header {
		if _, ok := columnCells[name]; !ok {
			return nil, fmt.Errorf("unknown column %q in header spec", name)
		}
	}
	return &RowBuilder{header: header}, nil
}

// Header returns the spec the builder composes against.
func (b *RowBuilder) Header() HeaderSpec { return b.header }

// Build returns one row whose cell count and order match the HeaderSpec.
func (b *RowBuilder) Build(in RowInput) []string {
	row := make([]string, len(b.header))
	for i, name := range b.header {
		row[i] = columnCells[name](in)
	}
	return row
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}

func dateCell(d time.Time) string {
	if d.IsZero() {
		d = time.Now()
	}
	return d.Format("2006-01-02")
}
