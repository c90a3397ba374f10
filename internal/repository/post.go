package repository

import (
	"context"
	"fmt"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return translate(r.db.WithContext(ctx).Create(post).Error, "Post", post.Slug)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, translate(err, "Post", slug)
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	defer observability.TrackQuery("read", "posts")()
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, translate(err, "Post", slug)
	}
	return count > 0, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, category string) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if category != "" {
		// categories is a JSON array column; match the quoted element.
		q = q.Where("categories LIKE ?", "%\""+category+"\"%")
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err, "Post", "list")
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	// Counters are excluded so a stale read cannot overwrite concurrent increments.
	err := r.db.WithContext(ctx).Model(post).
		Select("slug", "title", "content", "categories", "updated_at").
		Updates(post).Error
	return translate(err, "Post", post.ID)
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "posts")()
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return translate(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) IncrementCounter(ctx context.Context, postID string, field models.CounterField, delta int64) error {
	if !field.Valid() {
		return fmt.Errorf("unknown post counter %q", field)
	}
	defer observability.TrackQuery("increment", "posts")()
	col := string(field)
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return translate(res.Error, "Post", postID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
