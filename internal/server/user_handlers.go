package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id and returns only the public summary.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	summary, err := s.userService.PublicProfile(c.UserContext(), param(c, "id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name  *string `json:"name"`
		Image *string `json:"image"`
		Bio   *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: currentUserID(c),
		Name:   req.Name,
		Image:  req.Image,
		Bio:    req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
