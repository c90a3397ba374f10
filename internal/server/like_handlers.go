package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/posts/:slug/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	liked, err := s.likeService.Toggle(c.UserContext(), param(c, "slug"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetLikeStatus handles GET /api/posts/:slug/like
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	liked, err := s.likeService.IsLiked(c.UserContext(), param(c, "slug"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetLikers handles GET /api/posts/:slug/likes
func (s *Server) GetLikers(c *fiber.Ctx) error {
	likers, err := s.likeService.Likers(c.UserContext(), param(c, "slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likers)
}
