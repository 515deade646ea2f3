package feed

import (
	"errors"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{"first page", 0, 3, []int{0, 1, 2}},
		{"tail clamps to N", 5, 10, []int{5, 6, 7, 8, 9}},
		{"offset past end", 20, 5, []int{}},
		{"offset at end", 10, 5, []int{}},
		{"zero limit", 0, 0, []int{}},
		{"whole list", 0, 10, items},
		{"negative offset clamps", -3, 2, []int{0, 1}},
		{"negative limit clamps", 2, -1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.offset, tt.limit)
			if got == nil {
				t.Fatal("Paginate returned nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Paginate(%d, %d) = %v, want %v", tt.offset, tt.limit, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Paginate(%d, %d)[%d] = %d, want %d", tt.offset, tt.limit, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPaginate_HugeLimit(t *testing.T) {
	got := Paginate([]int{1, 2, 3}, 1, int(^uint(0)>>1))
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %v", got)
	}
}

func TestPageValidate(t *testing.T) {
	tests := []struct {
		page    Page
		wantErr bool
	}{
		{Page{Limit: 10, Offset: 0}, false},
		{Page{Limit: 0, Offset: 0}, false},
		{Page{Limit: -1, Offset: 0}, true},
		{Page{Limit: 10, Offset: -5}, true},
	}

	for _, tt := range tests {
		err := tt.page.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%+v.Validate() error = %v, wantErr %v", tt.page, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPage) {
			t.Errorf("%+v.Validate() error = %v, want ErrInvalidPage", tt.page, err)
		}
	}
}
