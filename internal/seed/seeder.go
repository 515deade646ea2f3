package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JMirval/alelysee/internal/model"
)

// Writer is the subset of a store the seeder writes through.
type Writer interface {
	CountVideos(ctx context.Context) (int64, error)
	CreateVideo(ctx context.Context, v *model.Video) error
	SetVote(ctx context.Context, v model.Vote) error
	AddComment(ctx context.Context, c *model.Comment) error
}

// Options sizes the generated data set. The same Seed produces the same data.
type Options struct {
	Seed     uint64
	Users    int
	Targets  int
	Videos   int
	Votes    int
	Comments int
	// Span is how far back video creation times reach.
	Span time.Duration
	Now  time.Time
}

func DefaultOptions() Options {
	return Options{
		Seed:     42,
		Users:    25,
		Targets:  12,
		Videos:   80,
		Votes:    400,
		Comments: 150,
		Span:     10 * 24 * time.Hour,
	}
}

// Summary counts what a run created.
type Summary struct {
	Videos   int
	Votes    int
	Comments int
}

type Seeder struct {
	store  Writer
	opts   Options
	logger zerolog.Logger
}

func New(store Writer, opts Options, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		opts:   opts,
		logger: logger.With().Str("component", "seed").Logger(),
	}
}

// SeedIfEmpty seeds only when the store has no videos. It reports whether it seeded.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	n, err := s.store.CountVideos(ctx)
	if err != nil {
		return false, fmt.Errorf("count videos: %w", err)
	}
	if n > 0 {
		s.logger.Debug().Int64("videos", n).Msg("store not empty, skipping seed")
		return false, nil
	}

	sum, err := s.Seed(ctx)
	if err != nil {
		return false, err
	}
	s.logger.Info().
		Int("videos", sum.Videos).
		Int("votes", sum.Votes).
		Int("comments", sum.Comments).
		Msg("seeded empty store")
	return true, nil
}

// Seed generates users, proposal and program targets, videos attached to
// them, ±1 votes and comments on the videos.
func (s *Seeder) Seed(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.Users <= 0 || s.opts.Targets <= 0 || s.opts.Videos <= 0 {
		return sum, nil
	}

	f := gofakeit.New(s.opts.Seed)
	now := s.opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	start := now.Add(-s.opts.Span)

	users := make([]uuid.UUID, s.opts.Users)
	for i := range users {
		users[i] = fakeID(f)
	}

	type target struct {
		kind model.TargetType
		id   uuid.UUID
	}
	targets := make([]target, s.opts.Targets)
	for i := range targets {
		kind := model.TargetProposal
		if i%2 == 1 {
			kind = model.TargetProgram
		}
		targets[i] = target{kind: kind, id: fakeID(f)}
	}

	videos := make([]model.Video, 0, s.opts.Videos)
	for i := 0; i < s.opts.Videos; i++ {
		t := targets[f.IntRange(0, len(targets)-1)]
		duration := int32(f.IntRange(15, 600))
		v := model.Video{
			ID:              fakeID(f),
			OwnerUserID:     users[f.IntRange(0, len(users)-1)],
			TargetType:      t.kind,
			TargetID:        t.id,
			StorageBucket:   "videos",
			StorageKey:      fmt.Sprintf("uploads/%s.mp4", f.UUID()),
			ContentType:     "video/mp4",
			DurationSeconds: &duration,
			CreatedAt:       f.DateRange(start, now).UTC().Truncate(time.Millisecond),
		}
		if err := s.store.CreateVideo(ctx, &v); err != nil {
			return sum, fmt.Errorf("create video: %w", err)
		}
		videos = append(videos, v)
		sum.Videos++
	}

	for i := 0; i < s.opts.Votes; i++ {
		value := int16(1)
		// roughly one vote in four is a downvote
		if f.IntRange(0, 3) == 0 {
			value = -1
		}
		vote := model.Vote{
			UserID:     users[f.IntRange(0, len(users)-1)],
			TargetType: model.TargetVideo,
			TargetID:   videos[f.IntRange(0, len(videos)-1)].ID,
			Value:      value,
		}
		if err := s.store.SetVote(ctx, vote); err != nil {
			return sum, fmt.Errorf("set vote: %w", err)
		}
		sum.Votes++
	}

	for i := 0; i < s.opts.Comments; i++ {
		v := videos[f.IntRange(0, len(videos)-1)]
		c := model.Comment{
			ID:           fakeID(f),
			AuthorUserID: users[f.IntRange(0, len(users)-1)],
			TargetType:   model.TargetVideo,
			TargetID:     v.ID,
			BodyMarkdown: f.HipsterSentence(),
			CreatedAt:    f.DateRange(v.CreatedAt, now).UTC().Truncate(time.Millisecond),
		}
		if err := s.store.AddComment(ctx, &c); err != nil {
			return sum, fmt.Errorf("add comment: %w", err)
		}
		sum.Comments++
	}

	return sum, nil
}

func fakeID(f *gofakeit.Faker) uuid.UUID {
	return uuid.MustParse(f.UUID())
}
