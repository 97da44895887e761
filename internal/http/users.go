package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/auth"
	"task-tracker/internal/domain"
	"task-tracker/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type ProfileResponse struct {
	UserResponse
	Tasks []TaskResponse `json:"tasks"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if !bindUserRequest(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.userError(c, err, userMessages{
			conflict: "User with this email already exists",
			internal: "Internal server error during registration",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    userToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if !bindUserRequest(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.userError(c, err, userMessages{internal: "Internal server error during login"})
		return
	}

	token, expiresAt, err := h.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		h.userError(c, err, userMessages{internal: "Internal server error during login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"token":     token,
		"expiresAt": expiresAt.UTC().Format(isoMillis),
		"user":      userToResponse(user),
	})
}

func (h *Handler) getProfile(c *gin.Context) {
	id, _ := IdentityFrom(c)

	user, err := h.users.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		h.userError(c, err, userMessages{internal: "Internal server error while fetching profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": ProfileResponse{
			UserResponse: userToResponse(user),
			Tasks:        tasksToResponse(user.Tasks),
		},
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	id, _ := IdentityFrom(c)

	var req updateProfileRequest
	if !bindUserRequest(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id.UserID, service.ProfileUpdate{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.userError(c, err, userMessages{
			conflict: "Email is already taken",
			internal: "Internal server error while updating profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    userToResponse(user),
	})
}

// logout is stateless: the token stays valid until it expires and the client
// is expected to discard it.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *Handler) authTest(c *gin.Context) {
	id, _ := IdentityFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication working",
		"user":    id,
	})
}

func bindUserRequest(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return false
	}
	return true
}

type userMessages struct {
	conflict string
	internal string
}

// userError writes the user API's {"success": false, "message": ...} body.
func (h *Handler) userError(c *gin.Context, err error, msgs userMessages) {
	var (
		verr   *service.ValidationError
		status int
		msg    string
	)
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Message
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrIncorrectPassword):
		status, msg = http.StatusUnauthorized, "Current password is incorrect"
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrConflict) && msgs.conflict != "":
		status, msg = http.StatusConflict, msgs.conflict
	default:
		h.log(c).WithError(err).Error(msgs.internal)
		status, msg = http.StatusInternalServerError, msgs.internal
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(isoMillis),
		UpdatedAt: user.UpdatedAt.UTC().Format(isoMillis),
	}
}
