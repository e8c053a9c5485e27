package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is an append-only reply attached to exactly one post.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"type:varchar(36);not null;index" json:"postId"`
	Nickname  string    `gorm:"not null" json:"nickname"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentDraft is a comment before the store assigns id and creation time.
type CommentDraft struct {
	PostID   string `json:"postId"`
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}
