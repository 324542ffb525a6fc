package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

const (
	imageField          = "image"
	multipartOverhead   = 1 << 20
	msgNoFile           = "No file was submitted."
	msgInvalidImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooLargeFmt = "Ensure the file is no larger than %d bytes."
)

// UploadImage handles POST /recipes/:id/upload-image with a multipart
// "image" field.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	file, header, err := c.Request.FormFile(imageField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.rejectImage(c, tooLargeMessage(h.maxUploadBytes))
			return
		}
		c.JSON(http.StatusBadRequest, FieldErrors{imageField: {msgNoFile}})
		return
	}
	defer file.Close()

	recipe, err := h.recipes.UploadImage(c.Request.Context(), userID, id, header.Filename, file)
	switch {
	case errors.Is(err, service.ErrInvalidImage):
		h.rejectImage(c, msgInvalidImage)
		return
	case errors.Is(err, service.ErrImageTooLarge):
		h.rejectImage(c, tooLargeMessage(h.maxUploadBytes))
		return
	case err != nil:
		respondError(c, err)
		return
	}

	h.metrics.ImageUploaded()
	h.log.Info("recipe image uploaded", slog.Uint64("recipe_id", uint64(recipe.ID)), slog.String("key", recipe.Image))
	c.JSON(http.StatusOK, types.RecipeImageResponse{ID: recipe.ID, Image: h.recipes.ImageURL(recipe)})
}

func (h *RecipeHandler) rejectImage(c *gin.Context, msg string) {
	h.metrics.ImageRejected()
	c.JSON(http.StatusBadRequest, FieldErrors{imageField: {msg}})
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf(msgImageTooLargeFmt, limit)
}
