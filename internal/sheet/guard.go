package sheet

import (
	"context"
	"fmt"

	"github.com/sheetdrop/sheetdrop/internal/tabular"
)

// Guard keeps the sheet's header row equal to the configured HeaderSpec. It
// is safe to run before every append: a cheap read followed by a write only
// when the header is absent or drifted. No result is memoized, so a header
// someone edits between submissions is repaired on the next one.
type Guard struct {
	store  tabular.Store
	header HeaderSpec
}

// NewGuard builds a guard for the given store and spec.
func NewGuard(store tabular.Store, header HeaderSpec) *Guard {
	return &Guard{store: store, header: header}
}

// Ensure reads the header region and rewrites it when it does not match.
// It reports whether a rewrite happened.
func (g *Guard) Ensure(ctx context.Context) (rewritten bool, err error) {
	cells, err := g.store.ReadHeader(ctx, len(g.header))
	if err != nil {
		return false, fmt.Errorf("read header: %w", err)
	}
	if g.header.Equal(cells) {
		return false, nil
	}
	if err := g.store.WriteHeader(ctx, g.header); err != nil {
		return false, fmt.Errorf("write header: %w", err)
	}
	return true, nil
}
