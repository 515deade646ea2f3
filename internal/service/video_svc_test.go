package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
	"github.com/JMirval/alelysee/internal/repository"
)

type failingLister struct{ err error }

func (f failingLister) VideosByTarget(context.Context, model.TargetType, uuid.UUID, int, int) ([]model.Video, error) {
	return nil, f.err
}

func TestListByTarget(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	proposal := uuid.New()
	now := time.Now().UTC()

	var want []uuid.UUID
	for i := 0; i < 3; i++ {
		v := model.Video{TargetType: model.TargetProposal, TargetID: proposal, CreatedAt: now.Add(-time.Duration(i) * time.Hour)}
		if err := store.CreateVideo(ctx, &v); err != nil {
			t.Fatalf("CreateVideo: %v", err)
		}
		want = append(want, v.ID)
	}

	svc := NewVideoService(store, NewCacheServiceWithClient(nil, zerolog.Nop()), zerolog.Nop())

	tests := []struct {
		name string
		page feed.Page
		want []uuid.UUID
	}{
		{"first page", feed.Page{Limit: 2, Offset: 0}, want[:2]},
		{"second page", feed.Page{Limit: 2, Offset: 2}, want[2:]},
		{"past the end", feed.Page{Limit: 2, Offset: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListByTarget(ctx, model.TargetProposal, proposal, tt.page)
			if err != nil {
				t.Fatalf("ListByTarget: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d videos, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: got %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestListByTarget_Errors(t *testing.T) {
	ctx := context.Background()

	svc := NewVideoService(failingLister{err: errors.New("i/o timeout")}, nil, zerolog.Nop())
	_, err := svc.ListByTarget(ctx, model.TargetProgram, uuid.New(), feed.Page{Limit: 10})
	if !errors.Is(err, feed.ErrStoreUnavailable) {
		t.Errorf("store failure: got %v, want ErrStoreUnavailable", err)
	}

	svc = NewVideoService(failingLister{err: &feed.DecodeError{Field: "created_at", Value: "x"}}, nil, zerolog.Nop())
	_, err = svc.ListByTarget(ctx, model.TargetProgram, uuid.New(), feed.Page{Limit: 10})
	if !feed.IsDecodeError(err) || errors.Is(err, feed.ErrStoreUnavailable) {
		t.Errorf("decode failure: got %v, want *DecodeError", err)
	}

	_, err = svc.ListByTarget(ctx, model.TargetProgram, uuid.New(), feed.Page{Limit: -1})
	if !errors.Is(err, feed.ErrInvalidPage) {
		t.Errorf("bad page: got %v, want ErrInvalidPage", err)
	}
}
