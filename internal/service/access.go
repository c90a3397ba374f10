package service

import (
	"context"

	"folio/internal/models"
)

// CanMutate reports whether actorID may edit or delete comment. Only the
// original author may.
func CanMutate(actorID string, comment *models.Comment) bool {
	return comment != nil && actorID != "" && actorID == comment.AuthorID
}

// CheckDeleteConfirmation requires the caller to echo the comment id back
// before a delete proceeds.
func CheckDeleteConfirmation(commentID, token string) error {
	if token == "" {
		return models.NewValidationError("Deletion requires a confirmation token")
	}
	if token != commentID {
		return models.NewValidationError("Confirmation token does not match the comment id")
	}
	return nil
}

// canManagePost reports whether actorID may update or delete post: its author
// or an administrator.
func canManagePost(ctx context.Context, isAdmin AdminChecker, actorID string, post *models.Post) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	if post.AuthorID == actorID {
		return true, nil
	}
	if isAdmin == nil {
		return false, nil
	}
	return isAdmin(ctx, actorID)
}
