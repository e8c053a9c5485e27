package server

import (
	"io"
	"mime/multipart"

	"rumorplaza/internal/models"
	"rumorplaza/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ImageUploadResponse is the API response after uploading images.
type ImageUploadResponse struct {
	URLs   []string `json:"urls"`
	Failed int      `json:"failed"`
}

// UploadImages handles POST /api/images (multipart field "images")
func (s *Server) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}
	headers := form.File["images"]

	files := make([]service.UploadFile, 0, len(headers))
	for _, h := range headers {
		files = append(files, service.UploadFile{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Size:        h.Size,
		})
	}
	if err := s.imageService.ValidateUploads(files); err != nil {
		return respondServiceError(c, err)
	}

	contents := make([][]byte, 0, len(headers))
	for _, h := range headers {
		content, err := readFormFile(h)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		}
		contents = append(contents, content)
	}

	urls := s.imageService.UploadMany(c.UserContext(), contents)
	if len(urls) == 0 {
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity, models.NewValidationError("Image upload failed"))
	}
	return c.Status(fiber.StatusCreated).JSON(ImageUploadResponse{
		URLs:   urls,
		Failed: len(contents) - len(urls),
	})
}

func readFormFile(h *multipart.FileHeader) ([]byte, error) {
	src, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return io.ReadAll(src)
}
