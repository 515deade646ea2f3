package feed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/model"
)

// Store is the read side the candidate sources query, plus the bulk view reset
// used when a user's feed runs dry. Implementations exclude videos the user has
// already viewed from all three candidate queries.
type Store interface {
	// CollaborativeVideos returns unviewed videos that users who share a vote
	// target with user have also voted on, newest first.
	CollaborativeVideos(ctx context.Context, user uuid.UUID, limit int) ([]model.Video, error)

	// PopularVideos returns unviewed videos created after since, highest vote score first.
	PopularVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error)

	// InteractiveVideos returns unviewed videos created after since, ranked by
	// vote count plus twice the comment count.
	InteractiveVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error)

	// ResetViews deletes every view record of user and reports how many were removed.
	ResetViews(ctx context.Context, user uuid.UUID) (int64, error)
}

// Source produces ranked candidates for one user.
type Source interface {
	Name() string
	Candidates(ctx context.Context, user uuid.UUID, now time.Time) ([]model.Video, error)
}

// CollaborativeSource follows the one-hop co-vote graph.
type CollaborativeSource struct {
	Store Store
	Limit int
}

func (s CollaborativeSource) Name() string { return "collaborative" }

func (s CollaborativeSource) Candidates(ctx context.Context, user uuid.UUID, _ time.Time) ([]model.Video, error) {
	return s.Store.CollaborativeVideos(ctx, user, s.Limit)
}

// PopularSource ranks recent videos by vote score.
type PopularSource struct {
	Store  Store
	Limit  int
	Window time.Duration
}

func (s PopularSource) Name() string { return "popular" }

func (s PopularSource) Candidates(ctx context.Context, user uuid.UUID, now time.Time) ([]model.Video, error) {
	return s.Store.PopularVideos(ctx, user, now.Add(-s.Window), s.Limit)
}

// InteractiveSource ranks recent videos by engagement.
type InteractiveSource struct {
	Store  Store
	Limit  int
	Window time.Duration
}

func (s InteractiveSource) Name() string { return "interactive" }

func (s InteractiveSource) Candidates(ctx context.Context, user uuid.UUID, now time.Time) ([]model.Video, error) {
	return s.Store.InteractiveVideos(ctx, user, now.Add(-s.Window), s.Limit)
}

// Sources builds the three production sources in pattern slot order.
func Sources(store Store, cfg Config) []Source {
	sources := make([]Source, numSources)
	sources[SlotCollaborative] = CollaborativeSource{Store: store, Limit: cfg.CollaborativeLimit}
	sources[SlotPopular] = PopularSource{Store: store, Limit: cfg.PopularLimit, Window: cfg.Window}
	sources[SlotInteractive] = InteractiveSource{Store: store, Limit: cfg.InteractiveLimit, Window: cfg.Window}
	return sources
}
