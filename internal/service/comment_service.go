package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Defaults used when CommentLimits fields are zero.
const (
	DefaultCommentMaxDepth  = 1
	DefaultCommentMaxLength = 10000
)

// CommentLimits bounds comment size and reply nesting. MaxDepth 1 means only
// top-level comments accept replies.
type CommentLimits struct {
	MaxDepth  int
	MaxLength int
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authors     AuthorResolver
	events      EventPublisher
	limits      CommentLimits
}

type CreateCommentInput struct {
	UserID   string
	PostSlug string
	Content  string
	// ParentID is empty for a top-level comment.
	ParentID string
}

type UpdateCommentInput struct {
	UserID    string
	CommentID string
	Content   string
}

type DeleteCommentInput struct {
	UserID    string
	CommentID string
	// Confirm must equal CommentID.
	Confirm string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authors AuthorResolver,
	events EventPublisher,
	limits CommentLimits,
) *CommentService {
	if limits.MaxDepth < 1 {
		limits.MaxDepth = DefaultCommentMaxDepth
	}
	if limits.MaxLength < 1 {
		limits.MaxLength = DefaultCommentMaxLength
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authors:     authors,
		events:      events,
		limits:      limits,
	}
}

func (s *CommentService) validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > s.limits.MaxLength {
		return "", models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", s.limits.MaxLength))
	}
	return content, nil
}

func (s *CommentService) enrich(ctx context.Context, comments []*models.Comment) {
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors := resolveAuthors(ctx, s.authors, ids)
	for _, c := range comments {
		c.Author = summaryPtr(authors[c.AuthorID])
	}
}

// ListForPost returns the post's threads: top-level comments newest first,
// each carrying its replies in creation order. An unknown post has no comments.
func (s *CommentService) ListForPost(ctx context.Context, slug string) (comments []*models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "ListForPost", attribute.String("post.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetBySlug(ctx, slug)
	if models.IsNotFound(err) {
		return []*models.Comment{}, nil
	}
	if err != nil {
		return nil, err
	}

	flat, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, flat)
	return buildThreads(flat), nil
}

// CreateComment stores a new comment or reply and bumps the post's comment counter.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "CreateComment", attribute.String("post.slug", in.PostSlug))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	content, err := s.validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetBySlug(ctx, in.PostSlug)
	if err != nil {
		return nil, err
	}

	var parentID *string
	if parent := strings.TrimSpace(in.ParentID); parent != "" {
		if err := s.checkReplyTarget(ctx, post.ID, parent); err != nil {
			return nil, err
		}
		parentID = &parent
	}

	ts := now()
	comment = &models.Comment{
		ID:        newID(),
		PostID:    post.ID,
		AuthorID:  in.UserID,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.adjustCommentCount(ctx, post, 1)
	observability.CommentMutations.WithLabelValues("create").Inc()

	comment.Author = summaryPtr(s.authors.Resolve(ctx, comment.AuthorID))
	comment.Replies = []*models.Comment{}
	publish(ctx, s.events, notifications.EventCommentCreated, post.ID, comment)
	return comment, nil
}

// checkReplyTarget accepts parentID only if it is a comment on postID that is
// shallow enough to take another level of replies.
func (s *CommentService) checkReplyTarget(ctx context.Context, postID, parentID string) error {
	flat, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	byID := indexByID(flat)
	parent, ok := byID[parentID]
	if !ok || depthOf(parent, byID)+1 > s.limits.MaxDepth {
		return models.NewNotFoundError("Parent comment", parentID)
	}
	return nil
}

// UpdateComment replaces the content of a comment owned by the caller.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "UpdateComment", attribute.String("comment.id", in.CommentID))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	comment, err = s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(in.UserID, comment) {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	content, err := s.validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	comment.UpdatedAt = now()
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentMutations.WithLabelValues("update").Inc()

	comment = s.withThread(ctx, comment)
	publish(ctx, s.events, notifications.EventCommentUpdated, comment.PostID, comment)
	return comment, nil
}

// withThread returns comment with its author and replies attached. If the
// thread cannot be loaded the comment is returned without replies.
func (s *CommentService) withThread(ctx context.Context, comment *models.Comment) *models.Comment {
	flat, err := s.commentRepo.ListByPost(ctx, comment.PostID)
	if err == nil {
		s.enrich(ctx, flat)
		buildThreads(flat)
		if node, ok := indexByID(flat)[comment.ID]; ok {
			return node
		}
	}
	comment.Author = summaryPtr(s.authors.Resolve(ctx, comment.AuthorID))
	comment.Replies = []*models.Comment{}
	return comment
}

// DeleteComment removes a comment owned by the caller together with every
// reply below it and reports how many comments were removed.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (removed int64, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "DeleteComment", attribute.String("comment.id", in.CommentID))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == "" {
		return 0, models.NewUnauthorizedError("Authentication required")
	}
	if err := CheckDeleteConfirmation(in.CommentID, in.Confirm); err != nil {
		return 0, err
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return 0, err
	}
	if !CanMutate(in.UserID, comment) {
		return 0, models.NewForbiddenError("You can only delete your own comments")
	}

	flat, err := s.commentRepo.ListByPost(ctx, comment.PostID)
	if err != nil {
		return 0, err
	}
	removed, err = s.commentRepo.Delete(ctx, subtreeIDs(comment.ID, flat)...)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, models.NewNotFoundError("Comment", in.CommentID)
	}

	if post, err := s.postRepo.GetByID(ctx, comment.PostID); err == nil {
		s.adjustCommentCount(ctx, post, -removed)
	} else {
		slog.WarnContext(ctx, "post lookup after comment delete failed",
			slog.String("post_id", comment.PostID), slog.String("error", err.Error()))
	}
	observability.CommentMutations.WithLabelValues("delete").Add(float64(removed))

	publish(ctx, s.events, notifications.EventCommentDeleted, comment.PostID, map[string]any{
		"id":      comment.ID,
		"removed": removed,
	})
	return removed, nil
}

// adjustCommentCount moves the denormalized counter. The comment rows are the
// source of truth, so a failure here is logged rather than returned.
func (s *CommentService) adjustCommentCount(ctx context.Context, post *models.Post, delta int64) {
	if err := s.postRepo.IncrementCounter(ctx, post.ID, models.CounterComments, delta); err != nil {
		slog.WarnContext(ctx, "failed to update comment counter",
			slog.String("post_id", post.ID), slog.Int64("delta", delta), slog.String("error", err.Error()))
	}
	cache.InvalidatePost(ctx, post.Slug)
}
