package models

import "time"

// Tag is a shared label attached to posts through PostTag rows.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PostTag is the join row between a post and a tag.
type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
}

// TagUsage is a tag name with the number of posts carrying it.
type TagUsage struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
