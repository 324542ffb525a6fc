package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-api/backend/internal/service"
	"github.com/pageza/recipe-api/backend/internal/types"
)

// UserHandler serves account creation, token issuance and the "me" endpoints.
type UserHandler struct {
	auth service.IAuthService
	log  *slog.Logger
}

func NewUserHandler(auth service.IAuthService, log *slog.Logger) *UserHandler {
	return &UserHandler{auth: auth, log: log}
}

// Create handles POST /user/create
func (h *UserHandler) Create(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if errors.Is(err, service.ErrEmailTaken) {
		c.JSON(http.StatusBadRequest, FieldErrors{"email": {err.Error() + "."}})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.NewUserResponse(user))
}

// Token handles POST /user/token
func (h *UserHandler) Token(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, _, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Info("login failed", slog.String("email", req.Email), slog.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusBadRequest, FieldErrors{"non_field_errors": {err.Error() + "."}})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

// Me handles GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

// ReplaceMe handles PUT /user/me. Every field must be supplied.
func (h *UserHandler) ReplaceMe(c *gin.Context) {
	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	errs := userFieldErrors(req)
	for field, v := range map[string]*string{"email": req.Email, "password": req.Password, "name": req.Name} {
		if v == nil {
			errs.Add(field, msgRequired)
		}
	}
	if validationFailed(c, errs) {
		return
	}
	h.updateMe(c, req)
}

// PatchMe handles PATCH /user/me
func (h *UserHandler) PatchMe(c *gin.Context) {
	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if validationFailed(c, userFieldErrors(req)) {
		return
	}
	h.updateMe(c, req)
}

func (h *UserHandler) updateMe(c *gin.Context, req types.UpdateUserRequest) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.UpdateUser(c.Request.Context(), userID, req)
	if errors.Is(err, service.ErrEmailTaken) {
		c.JSON(http.StatusBadRequest, FieldErrors{"email": {err.Error() + "."}})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func userFieldErrors(req types.UpdateUserRequest) FieldErrors {
	errs := FieldErrors{}
	if isBlank(req.Email) {
		errs.Add("email", msgBlank)
	}
	if isBlank(req.Name) {
		errs.Add("name", msgBlank)
	}
	if isBlank(req.Password) {
		errs.Add("password", msgBlank)
	}
	return errs
}
