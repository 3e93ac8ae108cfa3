package sheet

import (
	"context"
	"fmt"

	"github.com/sheetdrop/sheetdrop/internal/tabular"
)

// Sink appends finished rows beneath the header. It rejects rows whose width
// does not match the HeaderSpec rather than letting a misaligned row reach
// the sheet.
type Sink struct {
	store tabular.Store
	width int
}

// NewSink builds a sink whose rows must match the header's width.
func NewSink(store tabular.Store, header HeaderSpec) *Sink {
	return &Sink{store: store, width: len(header)}
}

// Append writes one row after the existing content.
func (s *Sink) Append(ctx context.Context, row []string) error {
	if len(row) != s.width {
		return fmt.Errorf("row has %d cells, header has %d", len(row), s.width)
	}
	return s.store.Append(ctx, row)
}
