package server

import (
	"rumorplaza/internal/middleware"
	"rumorplaza/internal/models"

	"github.com/gofiber/fiber/v2"
)

// passwordRequest carries the author password for gated operations.
type passwordRequest struct {
	Password string `json:"password"`
}

// updatePostRequest is the body of PUT /api/posts/:id.
type updatePostRequest struct {
	Password string `json:"password"`
	models.PostPatch
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(models.Categories)
}

// GetPosts handles GET /api/posts. ?category= filters by category ("all"
// disables the filter); ?limit= returns only the most recent posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if raw := c.Query("category"); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok && category != models.CategoryAll {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid category"))
		}
		return c.JSON(s.postService.ListPostsByCategory(ctx, category))
	}
	if limit := parseLimit(c); limit > 0 {
		return c.JSON(s.postService.ListRecentPosts(ctx, limit))
	}
	return c.JSON(s.postService.ListPosts(ctx))
}

// GetPopularPosts handles GET /api/posts/popular
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.ListPopularPosts(c.UserContext(), parseLimit(c)))
}

// SearchPosts handles GET /api/posts/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	return c.JSON(s.postService.SearchPosts(c.UserContext(), c.Query("q")))
}

// GetPost handles GET /api/posts/:id. Each call counts as a view.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	detail, err := s.postService.ViewPost(c.UserContext(), id, middleware.ClientIDFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var draft models.PostDraft
	if err := c.BodyParser(&draft); err != nil {
		return badRequestBody(c)
	}
	post, err := s.postService.CreatePost(c.UserContext(), draft)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	post, err := s.postService.UpdatePost(c.UserContext(), id, req.Password, req.PostPatch)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	if err := s.postService.DeletePost(c.UserContext(), id, req.Password); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// VerifyPassword handles POST /api/posts/:id/verify
func (s *Server) VerifyPassword(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	return c.JSON(fiber.Map{"valid": s.postService.VerifyPassword(c.UserContext(), id, req.Password)})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	state, err := s.likeService.ToggleLike(c.UserContext(), id, middleware.ClientIDFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(state)
}
