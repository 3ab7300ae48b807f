package auth

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/services/users"
)

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@thereadylab.com"`
	FullName string `json:"full_name" binding:"required,min=1" example:"Ada Lovelace"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for authentication
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles account creation
// @Summary Register a new account
// @Description Create a student account and return a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} types.TokenResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /api/v1/auth/register [post]
func Register(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		user, err := deps.UserService.Register(c.Request.Context(), req.Email, req.FullName, req.Password)
		if err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				types.SendConflict(c, "Email already registered")
				return
			}
			types.SendBadRequest(c, err.Error())
			return
		}

		// Bind any outstanding institution invites for this email.
		if deps.InstitutionService != nil {
			if err := deps.InstitutionService.AcceptPendingInvites(c.Request.Context(), user); err != nil {
				log.Printf("[WARN] Failed to accept pending invites for user %d: %v", user.ID, err)
			}
		}

		token, err := deps.AuthService.IssueToken(user)
		if err != nil {
			types.SendInternalError(c, "Failed to issue token")
			return
		}

		types.SendCreated(c, types.TokenResponse{Token: token, User: user})
	}
}

// Login handles authentication
// @Summary Log in
// @Description Exchange email and password for a signed token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} types.TokenResponse
// @Failure 401 {object} types.ErrorResponse
// @Router /api/v1/auth/login [post]
func Login(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		user, err := deps.UserService.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			types.SendUnauthorized(c, "Invalid email or password")
			return
		}

		token, err := deps.AuthService.IssueToken(user)
		if err != nil {
			types.SendInternalError(c, "Failed to issue token")
			return
		}

		types.SendSuccess(c, types.TokenResponse{Token: token, User: user})
	}
}

// Me returns the authenticated user
// @Summary Get current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} types.ErrorResponse
// @Router /api/v1/auth/me [get]
func Me(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			types.SendUnauthorized(c, "Unauthorized")
			return
		}

		user, err := deps.UserService.GetByID(c.Request.Context(), userID)
		if err != nil {
			types.SendNotFound(c, "User not found")
			return
		}
		types.SendSuccess(c, user)
	}
}
