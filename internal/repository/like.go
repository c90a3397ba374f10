package repository

import (
	"context"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("read", "likes")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, translate(err, "Like", postID)
	}
	return count > 0, nil
}

func (r *likeRepository) Add(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("create", "likes")()
	// ON CONFLICT DO NOTHING keeps concurrent toggles from inserting duplicates.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, translate(res.Error, "Like", postID)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Remove(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("delete", "likes")()
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, translate(res.Error, "Like", postID)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) ListUserIDs(ctx context.Context, postID string) ([]string, error) {
	defer observability.TrackQuery("list", "likes")()
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, translate(err, "Like", postID)
	}
	return userIDs, nil
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) error {
	defer observability.TrackQuery("delete", "likes")()
	return translate(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error, "Like", postID)
}
