package feed

import "fmt"

// Paging bounds for the HTTP surface.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// Page is an offset/limit window over an ordered result.
type Page struct {
	Limit  int
	Offset int
}

// Validate rejects negative limit or offset.
func (p Page) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("%w: limit %d", ErrInvalidPage, p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrInvalidPage, p.Offset)
	}
	return nil
}

// Paginate returns items[start:end] with start = min(offset, n) and
// end = min(offset+limit, n). Negative inputs clamp to zero. The result is
// never nil so it always serializes as a JSON array.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	n := len(items)
	start := min(offset, n)
	end := n
	if limit < n-start {
		end = start + limit
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
