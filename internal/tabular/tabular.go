// Package tabular abstracts the remote sheet behind the three operations the
// pipeline needs: read the header region, rewrite it, and append one row
// beneath the existing content.
package tabular

import "context"

// Store is the narrow surface of a tabular sheet. ReadHeader returns the
// current first-row cells confined to width columns; a nil slice means the
// header region is absent. Append must insert after the last populated row and
// never overwrite prior content.
type Store interface {
	ReadHeader(ctx context.Context, width int) ([]string, error)
	WriteHeader(ctx context.Context, cells []string) error
	Append(ctx context.Context, row []string) error
}

// columnName converts a 1-based column number to its A1 letter form
// (1 -> A, 26 -> Z, 27 -> AA).
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
