package model

import (
	"time"

	"github.com/google/uuid"
)

// TargetType is the kind of content a video (or vote, or comment) is attached to.
type TargetType string

const (
	TargetProposal TargetType = "proposal"
	TargetProgram  TargetType = "program"
	TargetVideo    TargetType = "video"
	TargetComment  TargetType = "comment"
)

// ParseTargetType maps a database discriminator onto a TargetType.
func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(s) {
	case TargetProposal, TargetProgram, TargetVideo, TargetComment:
		return TargetType(s), true
	}
	return "", false
}

// Video is an uploaded clip with its live vote aggregate.
// VoteScore is the sum of Vote.Value for this video, recomputed on every read.
type Video struct {
	ID              uuid.UUID  `json:"id"`
	OwnerUserID     uuid.UUID  `json:"ownerUserId"`
	TargetType      TargetType `json:"targetType"`
	TargetID        uuid.UUID  `json:"targetId"`
	StorageBucket   string     `json:"storageBucket"`
	StorageKey      string     `json:"storageKey"`
	ContentType     string     `json:"contentType"`
	DurationSeconds *int32     `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	VoteScore       int64      `json:"voteScore"`
}

// FeedResponse is the API response for paged video listings.
type FeedResponse struct {
	Videos []Video `json:"videos"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ViewRecord marks that a user has already been shown a video.
type ViewRecord struct {
	UserID   uuid.UUID `json:"userId"`
	VideoID  uuid.UUID `json:"videoId"`
	ViewedAt time.Time `json:"viewedAt"`
}

// Bookmark is a user's saved video.
type Bookmark struct {
	UserID    uuid.UUID `json:"userId"`
	VideoID   uuid.UUID `json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

// VideoActionRequest is the API request body for view and bookmark writes.
type VideoActionRequest struct {
	VideoID string `json:"videoId"`
}

// BookmarkResponse is the API response after toggling a bookmark.
type BookmarkResponse struct {
	VideoID    uuid.UUID `json:"videoId"`
	Bookmarked bool      `json:"bookmarked"`
}
