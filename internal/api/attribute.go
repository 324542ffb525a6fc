package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

// AttributeHandler serves /tags or /ingredients, depending on the service it
// wraps.
type AttributeHandler struct {
	attrs service.IAttributeService
	name  string
	log   *slog.Logger
}

func NewAttributeHandler(attrs service.IAttributeService, name string, log *slog.Logger) *AttributeHandler {
	return &AttributeHandler{attrs: attrs, name: name, log: log}
}

// List handles GET with an optional assigned_only=0|1 query parameter.
func (h *AttributeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var assignedOnly bool
	switch c.DefaultQuery("assigned_only", "0") {
	case "0":
	case "1":
		assignedOnly = true
	default:
		c.JSON(http.StatusBadRequest, FieldErrors{"assigned_only": {"Select a valid choice. Must be 0 or 1."}})
		return
	}

	attrs, err := h.attrs.List(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewAttributeResponses(attrs))
}

// Create returns 201 for a new row and 200 when the name already exists.
func (h *AttributeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req types.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, FieldErrors{"name": {msgBlank}})
		return
	}

	attr, created, err := h.attrs.Create(c.Request.Context(), userID, name)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.log.Info(h.name+" created", slog.Uint64("user_id", uint64(userID)), slog.Uint64("id", uint64(attr.ID)))
	}
	c.JSON(status, types.NewAttributeResponse(*attr))
}

func (h *AttributeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	attr, err := h.attrs.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewAttributeResponse(*attr))
}

// Replace handles PUT, where name is required.
func (h *AttributeHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

func (h *AttributeHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *AttributeHandler) update(c *gin.Context, full bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req types.UpdateAttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	errs := FieldErrors{}
	if full && req.Name == nil {
		errs.Add("name", msgRequired)
	}
	if isBlank(req.Name) {
		errs.Add("name", msgBlank)
	}
	if validationFailed(c, errs) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	attr, err := h.attrs.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewAttributeResponse(*attr))
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.attrs.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
