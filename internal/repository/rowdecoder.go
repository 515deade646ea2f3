package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

// scanner is satisfied by pgx.Row(s) and *sql.Row(s).
type scanner interface {
	Scan(dest ...any) error
}

// VideoRow is a video row as it comes off the wire. Ids are selected as text
// and created_at is left untyped: Postgres hands back time.Time, SQLite hands
// back text.
type VideoRow struct {
	ID              string
	OwnerUserID     string
	TargetType      string
	TargetID        string
	StorageBucket   string
	StorageKey      string
	ContentType     string
	DurationSeconds *int32
	CreatedAt       any
	VoteScore       int64
}

func (r *VideoRow) dest() []any {
	return []any{
		&r.ID, &r.OwnerUserID, &r.TargetType, &r.TargetID,
		&r.StorageBucket, &r.StorageKey, &r.ContentType,
		&r.DurationSeconds, &r.CreatedAt, &r.VoteScore,
	}
}

// timestamp layouts SQLite and Postgres text casts produce.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// DecodeVideo maps a raw row onto model.Video.
func DecodeVideo(row VideoRow) (model.Video, error) {
	var v model.Video
	var err error

	if v.ID, err = decodeUUID("id", row.ID); err != nil {
		return v, err
	}
	if v.OwnerUserID, err = decodeUUID("owner_user_id", row.OwnerUserID); err != nil {
		return v, err
	}
	tt, ok := model.ParseTargetType(row.TargetType)
	if !ok {
		return v, &feed.DecodeError{Field: "target_type", Value: row.TargetType}
	}
	v.TargetType = tt
	if v.TargetID, err = decodeUUID("target_id", row.TargetID); err != nil {
		return v, err
	}
	if v.CreatedAt, err = decodeTime("created_at", row.CreatedAt); err != nil {
		return v, err
	}

	v.StorageBucket = row.StorageBucket
	v.StorageKey = row.StorageKey
	v.ContentType = row.ContentType
	v.DurationSeconds = row.DurationSeconds
	v.VoteScore = row.VoteScore
	return v, nil
}

func decodeUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &feed.DecodeError{Field: field, Value: raw, Err: err}
	}
	return id, nil
}

func decodeTime(field string, raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTime(field, t)
	case []byte:
		return parseTime(field, string(t))
	default:
		return time.Time{}, &feed.DecodeError{Field: field, Value: fmt.Sprintf("%v", raw)}
	}
}

func parseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, &feed.DecodeError{Field: field, Value: s, Err: lastErr}
}

// scanVideos drains rows into decoded videos. next and err are the rows'
// iteration methods so pgx and database/sql rows share one loop.
func scanVideos(next func() bool, s scanner, rowsErr func() error) ([]model.Video, error) {
	videos := []model.Video{}
	for next() {
		var row VideoRow
		if err := s.Scan(row.dest()...); err != nil {
			return nil, err
		}
		v, err := DecodeVideo(row)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rowsErr()
}
