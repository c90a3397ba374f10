package repository

import (
	"errors"
	"fmt"

	"folio/internal/models"

	"gorm.io/gorm"
)

// NewGormStore wires every repository to the same gorm connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Likes:    NewLikeRepository(db),
	}
}

// translate maps gorm errors onto the AppError taxonomy.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	// Requires TranslateError on the gorm config.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError(fmt.Sprintf("%s %v already exists", resource, id))
	}
	return fmt.Errorf("%s query failed: %w", resource, err)
}
