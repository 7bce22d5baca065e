package models

import "time"

// Comment represents a comment on a post. Replies form a tree through ParentID.
type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	AuthorID  uint       `gorm:"not null;index" json:"author_id"`
	Author    *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    uint       `gorm:"not null;index" json:"post_id"`
	ParentID  *uint      `gorm:"index" json:"parent_id"`
	Replies   []*Comment `gorm:"-" json:"replies"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
