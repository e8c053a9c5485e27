package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like marks that one client identity approved one post.
// UserID is an opaque client-generated token, not an account.
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_post_user" json:"postId"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_likes_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
