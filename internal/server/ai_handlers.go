package server

import (
	"inkpress/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GenerateIdeas handles POST /api/ai/ideas
// @Summary Suggest post titles
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{topic=string,count=int} true "Topic and number of ideas (1-10, default 5)"
// @Success 200 {object} object{ideas=[]string}
// @Failure 429 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /ai/ideas [post]
func (s *Server) GenerateIdeas(c *fiber.Ctx) error {
	var req struct {
		Topic string `json:"topic"`
		Count int    `json:"count"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	ideas, err := s.aiService.Ideas(c.UserContext(), req.Topic, req.Count)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"ideas": ideas})
}

// DraftReply handles POST /api/ai/reply
// @Summary Draft an author reply to a comment
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_title=string,comment=string} true "Post title and comment"
// @Success 200 {object} object{reply=string}
// @Failure 429 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /ai/reply [post]
func (s *Server) DraftReply(c *fiber.Ctx) error {
	var req struct {
		PostTitle string `json:"post_title"`
		Comment   string `json:"comment"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	reply, err := s.aiService.DraftReply(c.UserContext(), req.PostTitle, req.Comment)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}

// Summarize handles POST /api/ai/summarize
// @Summary Summarize post content
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string} true "Content"
// @Success 200 {object} object{summary=string}
// @Failure 429 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /ai/summarize [post]
func (s *Server) Summarize(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	summary, err := s.aiService.Summarize(c.UserContext(), req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"summary": summary})
}
