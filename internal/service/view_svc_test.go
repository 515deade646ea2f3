package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
	"github.com/JMirval/alelysee/internal/repository"
)

func TestViewService(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewViewService(store, zerolog.Nop())
	user := uuid.New()

	v := model.Video{TargetType: model.TargetProposal, TargetID: uuid.New()}
	if err := store.CreateVideo(ctx, &v); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	if err := svc.MarkViewed(ctx, user, v.ID); err != nil {
		t.Fatalf("MarkViewed: %v", err)
	}
	if err := svc.MarkViewed(ctx, user, v.ID); err != nil {
		t.Fatalf("MarkViewed twice: %v", err)
	}

	on, err := svc.ToggleBookmark(ctx, user, v.ID)
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", on, err)
	}
	marks, err := svc.Bookmarks(ctx, user, feed.Page{Limit: 10})
	if err != nil || len(marks) != 1 || marks[0].ID != v.ID {
		t.Fatalf("Bookmarks = (%v, %v)", marks, err)
	}

	off, err := svc.ToggleBookmark(ctx, user, v.ID)
	if err != nil || off {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", off, err)
	}
	marks, err = svc.Bookmarks(ctx, user, feed.Page{Limit: 10})
	if err != nil || len(marks) != 0 {
		t.Fatalf("Bookmarks after untoggle = (%v, %v)", marks, err)
	}
}

func TestViewService_UnknownVideo(t *testing.T) {
	ctx := context.Background()
	svc := NewViewService(repository.NewMemoryStore(), zerolog.Nop())

	err := svc.MarkViewed(ctx, uuid.New(), uuid.New())
	if !errors.Is(err, feed.ErrUnknownVideo) {
		t.Errorf("MarkViewed: got %v, want ErrUnknownVideo", err)
	}
	if errors.Is(err, feed.ErrStoreUnavailable) {
		t.Errorf("unknown video must not look like an outage: %v", err)
	}

	_, err = svc.ToggleBookmark(ctx, uuid.New(), uuid.New())
	if !errors.Is(err, feed.ErrUnknownVideo) {
		t.Errorf("ToggleBookmark: got %v, want ErrUnknownVideo", err)
	}
}
