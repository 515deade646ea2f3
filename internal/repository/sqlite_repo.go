package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

// SQLiteTimeLayout is how timestamps are stored in SQLite TEXT columns. It
// sorts lexically in time order.
const SQLiteTimeLayout = "2006-01-02 15:04:05.000"

var pgPlaceholder = regexp.MustCompile(`\$(\d+)`)

// sqliteSQL rewrites $n placeholders to SQLite's ?n.
func sqliteSQL(query string) string {
	return pgPlaceholder.ReplaceAllString(query, "?${1}")
}

// Rewritten once at init.
var (
	sqliteCollaborative = sqliteSQL(collaborativeQuery)
	sqlitePopular       = sqliteSQL(popularQuery)
	sqliteInteractive   = sqliteSQL(interactiveQuery)
	sqliteByTarget      = sqliteSQL(byTargetQuery)
	sqliteBookmarked    = sqliteSQL(bookmarkedQuery)
	sqliteResetViews    = sqliteSQL(resetViewsQuery)
	sqliteMarkViewed    = sqliteSQL(markViewedQuery)
	sqliteDelBookmark   = sqliteSQL(deleteBookmarkQuery)
	sqliteInsBookmark   = sqliteSQL(insertBookmarkQuery)
	sqliteInsVideo      = sqliteSQL(insertVideoQuery)
	sqliteUpsertVote    = sqliteSQL(upsertVoteQuery)
	sqliteDeleteVote    = sqliteSQL(deleteVoteQuery)
	sqliteInsComment    = sqliteSQL(insertCommentQuery)
)

// SQLiteRepo is the local-mode store backed by modernc.org/sqlite.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// sqliteArgs converts arguments into the forms the schema stores: ids as
// canonical text and timestamps in SQLiteTimeLayout (UTC).
func sqliteArgs(args ...any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case uuid.UUID:
			out[i] = v.String()
		case time.Time:
			out[i] = v.UTC().Format(SQLiteTimeLayout)
		case model.TargetType:
			out[i] = string(v)
		default:
			out[i] = a
		}
	}
	return out
}

func (r *SQLiteRepo) queryVideos(ctx context.Context, query string, args ...any) ([]model.Video, error) {
	rows, err := r.db.QueryContext(ctx, query, sqliteArgs(args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVideos(rows.Next, rows, rows.Err)
}

func (r *SQLiteRepo) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, sqliteArgs(args...)...)
}

func (r *SQLiteRepo) CollaborativeVideos(ctx context.Context, user uuid.UUID, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, sqliteCollaborative, user, limit)
}

func (r *SQLiteRepo) PopularVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, sqlitePopular, user, since, limit)
}

func (r *SQLiteRepo) InteractiveVideos(ctx context.Context, user uuid.UUID, since time.Time, limit int) ([]model.Video, error) {
	return r.queryVideos(ctx, sqliteInteractive, user, since, limit)
}

func (r *SQLiteRepo) ResetViews(ctx context.Context, user uuid.UUID) (int64, error) {
	res, err := r.exec(ctx, sqliteResetViews, user)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepo) VideosByTarget(ctx context.Context, targetType model.TargetType, targetID uuid.UUID, limit, offset int) ([]model.Video, error) {
	return r.queryVideos(ctx, sqliteByTarget, targetType, targetID, limit, offset)
}

func (r *SQLiteRepo) BookmarkedVideos(ctx context.Context, user uuid.UUID, limit, offset int) ([]model.Video, error) {
	return r.queryVideos(ctx, sqliteBookmarked, user, limit, offset)
}

func (r *SQLiteRepo) MarkViewed(ctx context.Context, user, video uuid.UUID) error {
	_, err := r.exec(ctx, sqliteMarkViewed, user, video)
	return sqliteWriteError(err)
}

func (r *SQLiteRepo) ToggleBookmark(ctx context.Context, user, video uuid.UUID) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, sqliteDelBookmark, sqliteArgs(user, video)...)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	bookmarked := removed == 0
	if bookmarked {
		if _, err := tx.ExecContext(ctx, sqliteInsBookmark, sqliteArgs(user, video)...); err != nil {
			return false, sqliteWriteError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (r *SQLiteRepo) CreateVideo(ctx context.Context, v *model.Video) error {
	prepareVideo(v)
	_, err := r.exec(ctx, sqliteInsVideo,
		v.ID, v.OwnerUserID, v.TargetType, v.TargetID, v.StorageBucket,
		v.StorageKey, v.ContentType, v.DurationSeconds, v.CreatedAt)
	return err
}

func (r *SQLiteRepo) SetVote(ctx context.Context, v model.Vote) error {
	switch v.Value {
	case 0:
		_, err := r.exec(ctx, sqliteDeleteVote, v.UserID, v.TargetType, v.TargetID)
		return err
	case 1, -1:
		_, err := r.exec(ctx, sqliteUpsertVote, v.UserID, v.TargetType, v.TargetID, v.Value)
		return err
	default:
		return feed.ErrInvalidVote
	}
}

func (r *SQLiteRepo) AddComment(ctx context.Context, c *model.Comment) error {
	prepareComment(c)
	_, err := r.exec(ctx, sqliteInsComment,
		c.ID, c.AuthorUserID, c.TargetType, c.TargetID, c.BodyMarkdown, c.CreatedAt)
	return err
}

func (r *SQLiteRepo) CountVideos(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countVideosQuery).Scan(&n)
	return n, err
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// sqliteWriteError turns a foreign key violation on video_id into ErrUnknownVideo.
func sqliteWriteError(err error) error {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return err
	}
	code := sqErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqErr.Error(), "FOREIGN KEY")) {
		return feed.ErrUnknownVideo
	}
	return err
}
