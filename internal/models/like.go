package models

// Like records that a user liked a post. The pair is the whole state.
type Like struct {
	PostID string `gorm:"primaryKey;type:varchar(36)" bson:"post_id" json:"post_id"`
	UserID string `gorm:"primaryKey;type:varchar(36)" bson:"user_id" json:"user_id"`
}
