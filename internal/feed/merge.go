package feed

import (
	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/model"
)

// Merge interleaves candidate lists following pattern, where each pattern entry
// is an index into lists. Every list keeps its own cursor; a slot whose list is
// exhausted is skipped without substitution. Videos already emitted are dropped,
// so the first occurrence wins. Relative order within each list is preserved.
//
// The loop is bounded by consumed slots, not by iterations: each consumed slot
// counts toward the total number of candidates, and a full pattern cycle that
// consumes nothing ends it. Skipped slots never use up the bound, so a single
// popular candidate next to two empty lists is still returned.
func Merge(pattern []int, lists ...[]model.Video) []model.Video {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	if total == 0 || len(pattern) == 0 {
		return []model.Video{}
	}

	out := make([]model.Video, 0, total)
	seen := make(map[uuid.UUID]struct{}, total)
	cursors := make([]int, len(lists))

	consumed := 0
	for consumed < total {
		progressed := false
		for _, slot := range pattern {
			if consumed >= total {
				break
			}
			if slot < 0 || slot >= len(lists) {
				continue
			}
			if cursors[slot] >= len(lists[slot]) {
				continue
			}
			v := lists[slot][cursors[slot]]
			cursors[slot]++
			consumed++
			progressed = true

			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
		if !progressed {
			break
		}
	}
	return out
}
