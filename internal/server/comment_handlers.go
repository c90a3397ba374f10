package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns the comment threads of a post (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentService.ListForPost(c.UserContext(), param(c, "slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment creates a comment or reply on a post (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		ParentID string `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	created, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUserID(c),
		PostSlug: param(c, "slug"),
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateComment updates a comment (only owner)
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	updated, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: param(c, "commentId"),
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// DeleteComment deletes a comment and its replies (owner only). The caller
// confirms by echoing the comment id in ?confirm= or a JSON body.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	confirm := c.Query("confirm")
	if confirm == "" && len(c.Body()) > 0 {
		var req struct {
			Confirm string `json:"confirm"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
		confirm = req.Confirm
	}

	commentID := param(c, "commentId")
	removed, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
		Confirm:   confirm,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":      commentID,
		"removed": removed,
	})
}
