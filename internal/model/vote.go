package model

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a user's signed opinion on a piece of content. There is at most one
// vote per (user, target type, target id); Value 0 means "no vote" and removes the row.
type Vote struct {
	UserID     uuid.UUID  `json:"userId"`
	TargetType TargetType `json:"targetType"`
	TargetID   uuid.UUID  `json:"targetId"`
	Value      int16      `json:"value"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Comment is only ranked by count here; the body is carried for seeding.
type Comment struct {
	ID           uuid.UUID  `json:"id"`
	AuthorUserID uuid.UUID  `json:"authorUserId"`
	TargetType   TargetType `json:"targetType"`
	TargetID     uuid.UUID  `json:"targetId"`
	BodyMarkdown string     `json:"bodyMarkdown"`
	CreatedAt    time.Time  `json:"createdAt"`
}
