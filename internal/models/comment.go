package models

import "time"

// Comment is stored flat; ParentID links a reply to the comment it answers.
// Replies and Author are filled in when a thread is assembled for display.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" bson:"post_id" json:"post_id"`
	AuthorID  string    `gorm:"not null;type:varchar(36)" bson:"author_id" json:"author_id"`
	Content   string    `gorm:"type:text;not null" bson:"content" json:"content"`
	ParentID  *string   `gorm:"index;type:varchar(36)" bson:"parent_id,omitempty" json:"parent_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	Author  *AuthorSummary `gorm:"-" bson:"-" json:"author,omitempty"`
	Replies []*Comment     `gorm:"-" bson:"-" json:"replies"`
}

// IsTopLevel reports whether the comment anchors a thread.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
