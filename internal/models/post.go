package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultNickname is stored when an author leaves the nickname blank.
const DefaultNickname = "anonymous"

// MaxImagesPerPost caps the number of image URLs attached to one post.
const MaxImagesPerPost = 5

// Post represents an anonymous article on the board.
type Post struct {
	ID       string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Category Category `gorm:"type:varchar(16);not null;index" json:"category"`
	Nickname string   `gorm:"not null" json:"nickname"`
	// Password gates edit and delete; it is never serialized to clients.
	Password     string    `gorm:"not null" json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Images       []string  `gorm:"type:text;serializer:json" json:"images"`
	Views        int       `gorm:"not null;default:0" json:"views"`
	Likes        int       `gorm:"not null;default:0;index" json:"likes"`
	CommentCount int       `gorm:"column:comment_count;not null;default:0" json:"commentCount"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// PostDraft is a post as supplied by an author, before the store assigns
// id, counters and creation time.
type PostDraft struct {
	Category Category `json:"category"`
	Nickname string   `json:"nickname"`
	Password string   `json:"password"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Images   []string `json:"images"`
}

// PostPatch lists the editable fields of a post. Nil fields are left untouched.
type PostPatch struct {
	Category *Category `json:"category,omitempty"`
	Nickname *string   `json:"nickname,omitempty"`
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Images   *[]string `json:"images,omitempty"`
}

// Empty reports whether the patch carries no changes.
func (p PostPatch) Empty() bool {
	return p.Category == nil && p.Nickname == nil && p.Title == nil && p.Content == nil && p.Images == nil
}

// Apply copies the supplied fields onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Nickname != nil {
		post.Nickname = NormalizeNickname(*p.Nickname)
	}
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Images != nil {
		post.Images = append([]string{}, (*p.Images)...)
	}
}

// LikeState is the result of a like toggle.
type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// NormalizeNickname substitutes DefaultNickname for a blank nickname.
func NormalizeNickname(nickname string) string {
	if strings.TrimSpace(nickname) == "" {
		return DefaultNickname
	}
	return nickname
}
