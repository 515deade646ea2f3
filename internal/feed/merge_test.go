package feed

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/model"
)

// videos builds n videos with deterministic ids derived from prefix.
func videos(prefix string, n int) []model.Video {
	out := make([]model.Video, n)
	for i := range out {
		out[i] = model.Video{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d", prefix, i)))}
	}
	return out
}

func ids(vs []model.Video) []uuid.UUID {
	out := make([]uuid.UUID, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestMerge_NoDuplicates(t *testing.T) {
	shared := videos("shared", 3)
	a := append(videos("a", 4), shared...)
	b := append([]model.Video{shared[1]}, videos("b", 5)...)
	c := append(shared, videos("c", 2)...)

	out := Merge(DefaultPattern, a, b, c)

	seen := map[uuid.UUID]bool{}
	for _, v := range out {
		if seen[v.ID] {
			t.Fatalf("duplicate id %s in merged output", v.ID)
		}
		seen[v.ID] = true
	}
	// every distinct input id survives
	if len(out) != 4+3+5+2 {
		t.Errorf("expected 14 distinct videos, got %d", len(out))
	}
}

func TestMerge_BoundedAndOrderPreserved(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c int
	}{
		{"all empty", 0, 0, 0},
		{"only collaborative", 7, 0, 0},
		{"only popular", 0, 9, 0},
		{"uneven", 2, 11, 5},
		{"long", 40, 40, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, c := videos("a", tt.a), videos("b", tt.b), videos("c", tt.c)
			out := Merge(DefaultPattern, a, b, c)

			if len(out) > tt.a+tt.b+tt.c {
				t.Fatalf("len %d exceeds input total %d", len(out), tt.a+tt.b+tt.c)
			}
			// disjoint inputs: nothing may be dropped
			if len(out) != tt.a+tt.b+tt.c {
				t.Errorf("expected all %d videos, got %d", tt.a+tt.b+tt.c, len(out))
			}

			pos := map[uuid.UUID]int{}
			for i, v := range out {
				pos[v.ID] = i
			}
			for _, list := range [][]model.Video{a, b, c} {
				for i := 1; i < len(list); i++ {
					if pos[list[i-1].ID] > pos[list[i].ID] {
						t.Errorf("order not preserved between %d and %d", i-1, i)
					}
				}
			}
		})
	}
}

func TestMerge_WeightedRatio(t *testing.T) {
	a, b, c := videos("a", 40), videos("b", 40), videos("c", 40)
	source := map[uuid.UUID]int{}
	for i, list := range [][]model.Video{a, b, c} {
		for _, v := range list {
			source[v.ID] = i
		}
	}

	out := Merge(DefaultPattern, a, b, c)
	counts := [3]int{}
	for _, v := range out[:40] {
		counts[source[v.ID]]++
	}

	if counts != [3]int{16, 12, 12} {
		t.Errorf("first 40 items per source = %v, want [16 12 12]", counts)
	}
	// first cycle follows the pattern exactly
	want := append(append(append([]uuid.UUID{}, ids(a[:4])...), ids(b[:3])...), ids(c[:3])...)
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestMerge_DedupAcrossSources(t *testing.T) {
	hot := videos("hot", 1)[0]
	popular := append([]model.Video{hot}, videos("p", 2)...)
	interactive := append([]model.Video{hot}, videos("i", 2)...)

	out := Merge(DefaultPattern, nil, popular, interactive)

	n := 0
	for _, v := range out {
		if v.ID == hot.ID {
			n++
		}
	}
	if n != 1 {
		t.Errorf("hot video appears %d times, want 1", n)
	}
	if len(out) != 5 {
		t.Errorf("expected 5 videos, got %d", len(out))
	}
}

func TestMerge_EmptySlotsDoNotDropItems(t *testing.T) {
	// Collaborative is empty, so four of every ten slots are skipped.
	popular := videos("p", 15)
	interactive := videos("i", 15)

	out := Merge(DefaultPattern, nil, popular, interactive)

	if len(out) != 30 {
		t.Errorf("expected 30 videos, got %d", len(out))
	}
}

func TestMerge_LoneCandidateSurvivesEmptySlots(t *testing.T) {
	popular := videos("p", 1)

	out := Merge(DefaultPattern, nil, popular, nil)

	if len(out) != 1 || out[0].ID != popular[0].ID {
		t.Errorf("expected the single popular video, got %v", ids(out))
	}
}

func TestMerge_AlternativePattern(t *testing.T) {
	a, b := videos("a", 4), videos("b", 4)
	out := Merge([]int{0, 1}, a, b)

	want := []uuid.UUID{a[0].ID, b[0].ID, a[1].ID, b[1].ID, a[2].ID, b[2].ID, a[3].ID, b[3].ID}
	got := ids(out)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMerge_EmptyPattern(t *testing.T) {
	out := Merge(nil, videos("a", 3))
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", out)
	}
}
