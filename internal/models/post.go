package models

import (
	"time"

	"github.com/google/uuid"
)

// Post as it shown on the wall: joined with the author username
type Post struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Username  string
	Content   string
	CreatedAt time.Time
}
