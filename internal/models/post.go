package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post status filters accepted by listings.
const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
	PostStatusAll       = "all"
)

// CoverList is a list of media URLs stored as a JSON column.
type CoverList = datatypes.JSONSlice[string]

// Post represents a blog post in the Inkpress application.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CoverImages   CoverList `json:"cover_images"`
	CoverVideos   CoverList `json:"cover_videos"`
	IsDraft       bool      `gorm:"not null;default:false;index" json:"is_draft"`
	GeneratedByAI bool      `gorm:"not null;default:false" json:"generated_by_ai"`
	Views         int64     `gorm:"not null;default:0" json:"views"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags          []Tag     `gorm:"many2many:post_tags" json:"tags"`
	// HasLiked is computed per viewer and never persisted.
	HasLiked  bool      `gorm:"-" json:"has_liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// StatusCounts holds post totals per publication state.
type StatusCounts struct {
	All       int64 `json:"all"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
}

// PostPage is one page of a paginated post listing.
type PostPage struct {
	Posts      []Post       `json:"posts"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	TotalCount int64        `json:"total_count"`
	Counts     StatusCounts `json:"counts"`
}

// LikeState is the result of a like or unlike.
type LikeState struct {
	Likes    int64 `json:"likes"`
	HasLiked bool  `json:"has_liked"`
}
