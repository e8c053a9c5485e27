package server

import (
	"rumorplaza/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	return c.JSON(s.commentService.ListComments(c.UserContext(), id))
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, ok := postID(c)
	if !ok {
		return nil
	}
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c)
	}
	comment, err := s.commentService.AddComment(c.UserContext(), models.CommentDraft{
		PostID:   id,
		Nickname: req.Nickname,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
