package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

type voteKey struct {
	user       uuid.UUID
	targetType model.TargetType
	target     uuid.UUID
}

// MemoryStore keeps everything in process. It ranks and filters exactly like
// the SQL stores and backs DB_DRIVER=memory and unit tests.
type MemoryStore struct {
	mu sync.RWMutex

	videos    map[uuid.UUID]model.Video
	votes     map[voteKey]int16
	comments  map[uuid.UUID]model.Comment
	views     map[uuid.UUID]map[uuid.UUID]time.Time
	bookmarks map[uuid.UUID]map[uuid.UUID]int64 // insertion sequence
	seq       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		videos:    make(map[uuid.UUID]model.Video),
		votes:     make(map[voteKey]int16),
		comments:  make(map[uuid.UUID]model.Comment),
		views:     make(map[uuid.UUID]map[uuid.UUID]time.Time),
		bookmarks: make(map[uuid.UUID]map[uuid.UUID]int64),
	}
}

// voteStats and commentCount must be called with mu held.
func (m *MemoryStore) voteStats(video uuid.UUID) (score, count int64) {
	for k, v := range m.votes {
		if k.targetType == model.TargetVideo && k.target == video {
			score += int64(v)
			count++
		}
	}
	return score, count
}

func (m *MemoryStore) commentCount(video uuid.UUID) int64 {
	var n int64
	for _, c := range m.comments {
		if c.TargetType == model.TargetVideo && c.TargetID == video {
			n++
		}
	}
	return n
}

func (m *MemoryStore) withScore(v model.Video) model.Video {
	v.VoteScore, _ = m.voteStats(v.ID)
	return v
}

func (m *MemoryStore) viewed(user, video uuid.UUID) bool {
	_, ok := m.views[user][video]
	return ok
}

// newestFirst orders by created_at desc, then id.
func newestFirst(a, b model.Video) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func capped(videos []model.Video, limit int) []model.Video {
	if limit >= 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos
}

func (m *MemoryStore) CollaborativeVideos(_ context.Context, user uuid.UUID, limit int) ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	liked := map[uuid.UUID]bool{}
	for k, v := range m.votes {
		if k.user == user && k.targetType == model.TargetVideo && v == 1 {
			liked[k.target] = true
		}
	}
	peers := map[uuid.UUID]bool{}
	for k, v := range m.votes {
		if k.user != user && k.targetType == model.TargetVideo && v == 1 && liked[k.target] {
			peers[k.user] = true
		}
	}
	candidates := map[uuid.UUID]bool{}
	for k, v := range m.votes {
		if peers[k.user] && k.targetType == model.TargetVideo && v == 1 {
			candidates[k.target] = true
		}
	}

	out := []model.Video{}
	for id := range candidates {
		v, ok := m.videos[id]
		if !ok || m.viewed(user, id) {
			continue
		}
		out = append(out, m.withScore(v))
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i], out[j]) })
	return capped(out, limit), nil
}

func (m *MemoryStore) recentUnviewed(user uuid.UUID, since time.Time) []model.Video {
	out := []model.Video{}
	for id, v := range m.videos {
		if !v.CreatedAt.After(since) || m.viewed(user, id) {
			continue
		}
		out = append(out, m.withScore(v))
	}
	return out
}

func (m *MemoryStore) PopularVideos(_ context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.recentUnviewed(user, since)
	sort.Slice(out, func(i, j int) bool {
		if out[i].VoteScore != out[j].VoteScore {
			return out[i].VoteScore > out[j].VoteScore
		}
		return newestFirst(out[i], out[j])
	})
	return capped(out, limit), nil
}

func (m *MemoryStore) InteractiveVideos(_ context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.recentUnviewed(user, since)
	score := make(map[uuid.UUID]int64, len(out))
	for _, v := range out {
		_, votes := m.voteStats(v.ID)
		score[v.ID] = votes + 2*m.commentCount(v.ID)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := score[out[i].ID], score[out[j].ID]
		if si != sj {
			return si > sj
		}
		return newestFirst(out[i], out[j])
	})
	return capped(out, limit), nil
}

func (m *MemoryStore) ResetViews(_ context.Context, user uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.views[user]))
	delete(m.views, user)
	return n, nil
}

func (m *MemoryStore) VideosByTarget(_ context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Video{}
	for _, v := range m.videos {
		if v.TargetType == targetType && v.TargetID == targetID {
			out = append(out, m.withScore(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newestFirst(out[i], out[j]) })
	return feed.Paginate(out, offset, limit), nil
}

func (m *MemoryStore) BookmarkedVideos(_ context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	marks := m.bookmarks[user]
	out := []model.Video{}
	for id := range marks {
		if v, ok := m.videos[id]; ok {
			out = append(out, m.withScore(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return marks[out[i].ID] > marks[out[j].ID] })
	return feed.Paginate(out, offset, limit), nil
}

func (m *MemoryStore) MarkViewed(_ context.Context, user, video uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.videos[video]; !ok {
		return feed.ErrUnknownVideo
	}
	if m.views[user] == nil {
		m.views[user] = make(map[uuid.UUID]time.Time)
	}
	if _, ok := m.views[user][video]; !ok {
		m.views[user][video] = time.Now().UTC()
	}
	return nil
}

func (m *MemoryStore) ToggleBookmark(_ context.Context, user, video uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookmarks[user][video]; ok {
		delete(m.bookmarks[user], video)
		return false, nil
	}
	if _, ok := m.videos[video]; !ok {
		return false, feed.ErrUnknownVideo
	}
	if m.bookmarks[user] == nil {
		m.bookmarks[user] = make(map[uuid.UUID]int64)
	}
	m.seq++
	m.bookmarks[user][video] = m.seq
	return true, nil
}

func (m *MemoryStore) CreateVideo(_ context.Context, v *model.Video) error {
	prepareVideo(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *v
	stored.VoteScore = 0
	m.videos[v.ID] = stored
	return nil
}

func (m *MemoryStore) SetVote(_ context.Context, v model.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := voteKey{user: v.UserID, targetType: v.TargetType, target: v.TargetID}
	switch v.Value {
	case 0:
		delete(m.votes, key)
	case 1, -1:
		m.votes[key] = v.Value
	default:
		return feed.ErrInvalidVote
	}
	return nil
}

func (m *MemoryStore) AddComment(_ context.Context, c *model.Comment) error {
	prepareComment(c)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = *c
	return nil
}

func (m *MemoryStore) CountVideos(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.videos)), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
