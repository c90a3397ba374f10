package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/repository"
	"folio/internal/validation"
)

const (
	maxTitleLen      = 300
	maxPostLen       = 100000
	maxCategories    = 10
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	authors     AuthorResolver
	events      EventPublisher
	isAdmin     AdminChecker
}

type CreatePostInput struct {
	UserID     string
	Title      string
	Content    string
	Slug       string
	Categories []string
}

type ListPostsInput struct {
	Limit    int
	Offset   int
	Category string
	ViewerID string
}

// UpdatePostInput carries optional changes; nil fields are left untouched.
type UpdatePostInput struct {
	UserID     string
	Slug       string
	NewSlug    *string
	Title      *string
	Content    *string
	Categories []string
}

type DeletePostInput struct {
	UserID string
	Slug   string
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	authors AuthorResolver,
	events EventPublisher,
	isAdmin AdminChecker,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		authors:     authors,
		events:      events,
		isAdmin:     isAdmin,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return "", models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	return title, nil
}

func validateBody(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", models.NewValidationError("Content is required")
	}
	if len(content) > maxPostLen {
		return "", models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxPostLen))
	}
	return content, nil
}

func normalizeCategories(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) > maxCategories {
		return nil, models.NewValidationError(fmt.Sprintf("At most %d categories are allowed", maxCategories))
	}
	return out, nil
}

// claimSlug validates slug and checks that no other post uses it. The check is
// best effort; the store's unique index rejects a concurrent duplicate.
func (s *PostService) claimSlug(ctx context.Context, slug string) error {
	if err := validation.ValidatePostSlug(slug); err != nil {
		return models.NewValidationError(err.Error())
	}
	taken, err := s.postRepo.SlugExists(ctx, slug)
	if err != nil {
		return err
	}
	if taken {
		return models.NewConflictError(fmt.Sprintf("Slug %q is already taken", slug))
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	content, err := validateBody(in.Content)
	if err != nil {
		return nil, err
	}
	categories, err := normalizeCategories(in.Categories)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = validation.Slugify(title)
	}
	if err := s.claimSlug(ctx, slug); err != nil {
		return nil, err
	}

	ts := now()
	post := &models.Post{
		ID:         newID(),
		Slug:       slug,
		Title:      title,
		Content:    content,
		AuthorID:   in.UserID,
		Categories: categories,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	post.Author = summaryPtr(s.authors.Resolve(ctx, post.AuthorID))
	publish(ctx, s.events, notifications.EventPostCreated, post.ID, map[string]any{"slug": post.Slug, "title": post.Title})
	return post, nil
}

// GetPost returns the post, counting the read as a view.
func (s *PostService) GetPost(ctx context.Context, slug, viewerID string) (*models.Post, error) {
	var post models.Post
	_, err := cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
		p, err := s.postRepo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementCounter(ctx, post.ID, models.CounterViews, 1); err != nil {
		slog.WarnContext(ctx, "failed to count post view", slog.String("post_id", post.ID), slog.String("error", err.Error()))
	} else {
		post.ViewsCount++
	}

	if err := s.decorate(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	posts, err := s.postRepo.List(ctx, limit, offset, strings.ToLower(strings.TrimSpace(in.Category)))
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, posts, in.ViewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

// decorate attaches author summaries and the viewer's liked flag.
func (s *PostService) decorate(ctx context.Context, posts []*models.Post, viewerID string) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.AuthorID
	}
	authors := resolveAuthors(ctx, s.authors, ids)
	for _, p := range posts {
		p.Author = summaryPtr(authors[p.AuthorID])
		p.Liked = false
		if viewerID == "" {
			continue
		}
		liked, err := s.likeRepo.IsLiked(ctx, p.ID, viewerID)
		if err != nil {
			return err
		}
		p.Liked = liked
	}
	return nil
}

func (s *PostService) loadManaged(ctx context.Context, userID, slug, action string) (*models.Post, error) {
	if userID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	allowed, err := canManagePost(ctx, s.isAdmin, userID, post)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.NewForbiddenError(fmt.Sprintf("Only the author or an administrator can %s this post", action))
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.loadManaged(ctx, in.UserID, in.Slug, "update")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if post.Title, err = validateTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		if post.Content, err = validateBody(*in.Content); err != nil {
			return nil, err
		}
	}
	if in.Categories != nil {
		if post.Categories, err = normalizeCategories(in.Categories); err != nil {
			return nil, err
		}
	}
	if in.NewSlug != nil {
		newSlug := strings.TrimSpace(*in.NewSlug)
		if newSlug != post.Slug {
			if err := s.claimSlug(ctx, newSlug); err != nil {
				return nil, err
			}
			post.Slug = newSlug
		}
	}

	post.UpdatedAt = now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, in.Slug)
	cache.InvalidatePost(ctx, post.Slug)

	if err := s.decorate(ctx, []*models.Post{post}, in.UserID); err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.EventPostUpdated, post.ID, map[string]any{"slug": post.Slug})
	return post, nil
}

// DeletePost removes the post together with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.loadManaged(ctx, in.UserID, in.Slug, "delete")
	if err != nil {
		return err
	}

	if err := s.commentRepo.DeleteByPost(ctx, post.ID); err != nil {
		return err
	}
	if err := s.likeRepo.DeleteByPost(ctx, post.ID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.Slug)

	publish(ctx, s.events, notifications.EventPostDeleted, post.ID, map[string]any{"slug": post.Slug})
	return nil
}
