package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JMirval/alelysee/internal/model"
)

// fakeStore serves fixed candidate lists, filtered by an in-memory view set.
type fakeStore struct {
	mu sync.Mutex

	collaborative []model.Video
	popular       []model.Video
	interactive   []model.Video
	viewed        map[uuid.UUID]bool

	resets    int
	resetErr  error
	sourceErr error
	since     []time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{viewed: map[uuid.UUID]bool{}}
}

func (f *fakeStore) unviewed(list []model.Video, limit int) []model.Video {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Video{}
	for _, v := range list {
		if f.viewed[v.ID] {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (f *fakeStore) CollaborativeVideos(_ context.Context, _ uuid.UUID, limit int) ([]model.Video, error) {
	if f.sourceErr != nil {
		return nil, f.sourceErr
	}
	return f.unviewed(f.collaborative, limit), nil
}

func (f *fakeStore) PopularVideos(_ context.Context, _ uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	f.mu.Lock()
	f.since = append(f.since, since)
	f.mu.Unlock()
	return f.unviewed(f.popular, limit), nil
}

func (f *fakeStore) InteractiveVideos(_ context.Context, _ uuid.UUID, _ time.Time, limit int) ([]model.Video, error) {
	return f.unviewed(f.interactive, limit), nil
}

func (f *fakeStore) ResetViews(_ context.Context, _ uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	if f.resetErr != nil {
		return 0, f.resetErr
	}
	n := int64(len(f.viewed))
	f.viewed = map[uuid.UUID]bool{}
	return n, nil
}

func (f *fakeStore) view(vs ...model.Video) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range vs {
		f.viewed[v.ID] = true
	}
}

func newTestEngine(t *testing.T, store Store, concurrent bool) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Concurrent = concurrent
	e, err := NewEngine(store, cfg, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestListFeed_ColdUser(t *testing.T) {
	for _, concurrent := range []bool{true, false} {
		store := newFakeStore()
		store.popular = videos("p", 3)
		store.interactive = videos("i", 2)

		e := newTestEngine(t, store, concurrent)
		out, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

		require.NoError(t, err)
		assert.Len(t, out, 5)
		assert.Equal(t, 0, store.resets, "non-empty feed must not reset views")
	}
}

func TestListFeed_WindowUsesClock(t *testing.T) {
	store := newFakeStore()
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	e := newTestEngine(t, store, false).WithClock(func() time.Time { return fixed })
	_, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, store.since)
	assert.Equal(t, fixed.Add(-7*24*time.Hour), store.since[0])
}

func TestListFeed_ExhaustionResetsOnce(t *testing.T) {
	store := newFakeStore()
	all := videos("v", 3)
	store.popular = all
	store.interactive = all[:2]
	store.view(all...)

	e := newTestEngine(t, store, true)
	out, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, 1, store.resets)
}

func TestListFeed_EmptyStoreIsNotAnError(t *testing.T) {
	store := newFakeStore()

	e := newTestEngine(t, store, true)
	out, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 1, store.resets, "retry must happen exactly once")
}

func TestListFeed_SecondRequestAfterReset(t *testing.T) {
	store := newFakeStore()
	two := videos("v", 2)
	store.popular = two
	store.view(two...)

	e := newTestEngine(t, store, false)
	user := uuid.New()

	first, err := e.ListFeed(context.Background(), user, Page{Limit: 10})
	require.NoError(t, err)
	second, err := e.ListFeed(context.Background(), user, Page{Limit: 10})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(second), 2)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, 1, store.resets)
}

func TestListFeed_ResetFailure(t *testing.T) {
	store := newFakeStore()
	store.resetErr = errors.New("connection refused")

	e := newTestEngine(t, store, true)
	_, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestListFeed_SourceFailure(t *testing.T) {
	store := newFakeStore()
	store.popular = videos("p", 3)
	store.sourceErr = errors.New("timeout")

	e := newTestEngine(t, store, true)
	_, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 0, store.resets)
}

func TestListFeed_DecodeErrorPassesThrough(t *testing.T) {
	store := newFakeStore()
	store.sourceErr = &DecodeError{Field: "target_type", Value: "podcast"}

	e := newTestEngine(t, store, false)
	_, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10})

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "target_type", de.Field)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestListFeed_InvalidPage(t *testing.T) {
	e := newTestEngine(t, newFakeStore(), true)
	_, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestListFeed_Paginates(t *testing.T) {
	store := newFakeStore()
	store.popular = videos("p", 10)

	e := newTestEngine(t, store, true)
	out, err := e.ListFeed(context.Background(), uuid.New(), Page{Limit: 10, Offset: 5})

	require.NoError(t, err)
	assert.Equal(t, ids(store.popular[5:]), ids(out))
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pattern = []int{0, 3}
	_, err := NewEngine(newFakeStore(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError("op", nil))
	assert.ErrorIs(t, StoreError("op", errors.New("boom")), ErrStoreUnavailable)
	assert.ErrorIs(t, StoreError("op", ErrUnknownVideo), ErrUnknownVideo)
	assert.NotErrorIs(t, StoreError("op", ErrUnknownVideo), ErrStoreUnavailable)
}

func TestParseID(t *testing.T) {
	_, err := ParseID("video id", "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	id := uuid.New()
	got, err := ParseID("video id", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
