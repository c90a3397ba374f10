package models

import "time"

// Post represents a blog post addressed by its slug.
type Post struct {
	ID         string   `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Slug       string   `gorm:"uniqueIndex;not null" bson:"slug" json:"slug"`
	Title      string   `gorm:"not null" bson:"title" json:"title"`
	Content    string   `gorm:"type:text;not null" bson:"content" json:"content"`
	AuthorID   string   `gorm:"not null;index;type:varchar(36)" bson:"author_id" json:"author_id"`
	Categories []string `gorm:"serializer:json;type:text" bson:"categories" json:"categories"`
	// Denormalized counters, only ever moved through IncrementCounter.
	ViewsCount    int64     `gorm:"not null;default:0" bson:"views_count" json:"views_count"`
	CommentsCount int64     `gorm:"not null;default:0" bson:"comments_count" json:"comments_count"`
	LikesCount    int64     `gorm:"not null;default:0" bson:"likes_count" json:"likes_count"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`

	Author *AuthorSummary `gorm:"-" bson:"-" json:"author,omitempty"`
	// Liked is computed per request for the calling user.
	Liked bool `gorm:"-" bson:"-" json:"liked"`
}

// CounterField names a denormalized post counter.
type CounterField string

const (
	CounterViews    CounterField = "views_count"
	CounterComments CounterField = "comments_count"
	CounterLikes    CounterField = "likes_count"
)

// Valid reports whether f is a known counter column.
func (f CounterField) Valid() bool {
	switch f {
	case CounterViews, CounterComments, CounterLikes:
		return true
	}
	return false
}
