package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

// Repository is everything the service layer needs from a store. FeedRepo,
// SQLiteRepo, MemoryStore and Breaker all implement it.
type Repository interface {
	feed.Store

	VideosByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error)
	BookmarkedVideos(ctx context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error)
	MarkViewed(ctx context.Context, user, video uuid.UUID) error
	ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error)

	CreateVideo(ctx context.Context, v *model.Video) error
	SetVote(ctx context.Context, v model.Vote) error
	AddComment(ctx context.Context, c *model.Comment) error
	CountVideos(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

const pgForeignKeyViolation = "23503"

// TargetChannel is the Postgres NOTIFY channel carrying "type:id" keys of
// targets whose video listing changed.
const TargetChannel = "video_target_changes"

// TargetKey formats a target for NOTIFY payloads and cache keys.
func TargetKey(targetType model.TargetType, targetID uuid.UUID) string {
	return string(targetType) + ":" + targetID.String()
}

const notifyVideoTargetQuery = `
	SELECT pg_notify($1, v.target_type || ':' || CAST(v.target_id AS TEXT))
	FROM videos v
	WHERE v.id = $2`

// FeedRepo is the Postgres store.
type FeedRepo struct {
	pool *pgxpool.Pool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

func (r *FeedRepo) queryVideos(ctx context.Context, query string, args ...any) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows.Next, rows, rows.Err)
}

func (r *FeedRepo) CollaborativeVideos(ctx context.Context, user uuid.UUID, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, collaborativeQuery, user, limit)
}

func (r *FeedRepo) PopularVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, popularQuery, user, since, limit)
}

func (r *FeedRepo) InteractiveVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, interactiveQuery, user, since, limit)
}

func (r *FeedRepo) ResetViews(ctx context.Context, user uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, resetViewsQuery, user)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *FeedRepo) VideosByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error) {
	return r.queryVideos(ctx, byTargetQuery, string(targetType), targetID, limit, offset)
}

func (r *FeedRepo) BookmarkedVideos(ctx context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error) {
	return r.queryVideos(ctx, bookmarkedQuery, user, limit, offset)
}

// MarkViewed records a view; repeating it is a no-op.
func (r *FeedRepo) MarkViewed(ctx context.Context, user, video uuid.UUID) error {
	_, err := r.pool.Exec(ctx, markViewedQuery, user, video)
	return pgWriteError(err)
}

// ToggleBookmark removes the bookmark if present, otherwise adds it, in one
// transaction. It returns the new state.
func (r *FeedRepo) ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, deleteBookmarkQuery, user, video)
	if err != nil {
		return false, err
	}
	bookmarked := tag.RowsAffected() == 0
	if bookmarked {
		if _, err := tx.Exec(ctx, insertBookmarkQuery, user, video); err != nil {
			return false, pgWriteError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (r *FeedRepo) CreateVideo(ctx context.Context, v *model.Video) error {
	prepareVideo(v)
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertVideoQuery,
		v.ID, v.OwnerUserID, string(v.TargetType), v.TargetID, v.StorageBucket,
		v.StorageKey, v.ContentType, v.DurationSeconds, v.CreatedAt)
	if err != nil {
		return err
	}

	// Tell CacheWorker the target's listing changed
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, TargetChannel, TargetKey(v.TargetType, v.TargetID)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetVote upserts a ±1 vote or deletes it when Value is 0. Votes on videos
// notify the video's target so cached listings pick up the new score.
func (r *FeedRepo) SetVote(ctx context.Context, v model.Vote) error {
	var query string
	args := []any{v.UserID, string(v.TargetType), v.TargetID}
	switch v.Value {
	case 0:
		query = deleteVoteQuery
	case 1, -1:
		query = upsertVoteQuery
		args = append(args, v.Value)
	default:
		return feed.ErrInvalidVote
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return err
	}
	if v.TargetType == model.TargetVideo {
		if _, err := tx.Exec(ctx, notifyVideoTargetQuery, TargetChannel, v.TargetID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *FeedRepo) AddComment(ctx context.Context, c *model.Comment) error {
	prepareComment(c)
	_, err := r.pool.Exec(ctx, insertCommentQuery,
		c.ID, c.AuthorUserID, string(c.TargetType), c.TargetID, c.BodyMarkdown, c.CreatedAt)
	return err
}

func (r *FeedRepo) CountVideos(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, countVideosQuery).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (r *FeedRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// pgWriteError turns a foreign key violation on video_id into ErrUnknownVideo.
func pgWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return feed.ErrUnknownVideo
	}
	return err
}

// prepareVideo fills the id and creation time of a new video.
func prepareVideo(v *model.Video) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
}

func prepareComment(c *model.Comment) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}
