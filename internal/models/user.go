// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered reader or author of the blog.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password  string    `gorm:"not null" bson:"password" json:"-"`
	Image     *string   `bson:"image,omitempty" json:"image"`
	Bio       string    `bson:"bio" json:"bio"`
	IsAdmin   bool      `gorm:"not null;default:false" bson:"is_admin" json:"is_admin"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
