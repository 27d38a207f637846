package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cosmetics-store/internal/auth"
	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
	"cosmetics-store/internal/service"
)

const claimsContextKey = "auth_claims"

// requireAuth turns the bearer credential into verified claims on the
// context, or rejects the request. An absent credential is reported
// distinctly from a bad one.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, codeUnauthenticated, "access token required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, codeUnauthenticated, "access token required")
			return
		}

		claims, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				respondError(c, http.StatusUnauthorized, codeTokenExpired, "token has expired")
				return
			}
			respondError(c, http.StatusUnauthorized, codeInvalidToken, "invalid token")
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// requireAdmin is the role gate; it assumes requireAuth already ran.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims.Role != domain.RoleAdmin {
			respondError(c, http.StatusForbidden, codeForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func mustClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		panic("auth claims not found in context")
	}
	return value.(*auth.Claims)
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.WithError(err).Error("issue token after registration")
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "user registered successfully",
		"token":     token,
		"expiresIn": int64(h.tokens.TTL().Seconds()),
		"user":      userToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.WithError(err).Error("issue token after login")
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "login successful",
		"token":     token,
		"expiresIn": int64(h.tokens.TTL().Seconds()),
		"user":      userToResponse(user),
	})
}

// profile returns the caller's stored account details.
func (h *Handler) profile(c *gin.Context) {
	claims := mustClaims(c)

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"phone":     user.Phone,
			"address":   user.Address,
			"role":      user.Role,
		},
	})
}

// verify echoes the verified claims so clients can check a stored token.
func (h *Handler) verify(c *gin.Context) {
	claims := mustClaims(c)
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
			"role":     claims.Role,
		},
	})
}
