package server

import (
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media
// @Summary Upload an image or video
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image or video"
// @Param folder formData string false "Target folder"
// @Success 201 {object} media.Object
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /media [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	obj, err := s.mediaService.Upload(c.UserContext(), service.UploadInput{
		Reader:   src,
		Size:     file.Size,
		Filename: file.Filename,
		Folder:   c.FormValue("folder"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// DeleteMedia handles DELETE /api/media?public_id=...
// @Summary Delete an uploaded object
// @Tags media
// @Security BearerAuth
// @Param public_id query string true "Object public ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /media [delete]
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	if err := s.mediaService.Delete(c.UserContext(), c.Query("public_id")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
