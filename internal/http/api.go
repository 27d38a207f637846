package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cosmetics-store/internal/auth"
	"cosmetics-store/internal/service"
	"cosmetics-store/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	orders    service.OrderService
	catalog   service.CatalogService
	tokens    *auth.TokenService
	storage   storage.Service
	bucket    string
	keyPrefix string
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	orders service.OrderService,
	catalog service.CatalogService,
	tokens *auth.TokenService,
	store storage.Service,
	bucket, keyPrefix string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:     users,
		orders:    orders,
		catalog:   catalog,
		tokens:    tokens,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/verify", h.requireAuth(), h.verify)
		api.GET("/auth/profile", h.requireAuth(), h.profile)

		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.POST("/products", h.requireAuth(), h.requireAdmin(), h.createProduct)
		api.PUT("/products/:id", h.requireAuth(), h.requireAdmin(), h.updateProduct)
		api.DELETE("/products/:id", h.requireAuth(), h.requireAdmin(), h.deleteProduct)

		api.GET("/categories", h.listCategories)
		api.POST("/categories", h.requireAuth(), h.requireAdmin(), h.createCategory)

		api.POST("/orders", h.requireAuth(), h.createOrder)
		api.GET("/orders", h.requireAuth(), h.listOrders)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Error codes returned in the structured error body. Stable across releases;
// clients key on these, not on messages.
const (
	codeValidation      = "VALIDATION_ERROR"
	codeUnauthenticated = "UNAUTHENTICATED"
	codeInvalidCreds    = "INVALID_CREDENTIALS"
	codeInvalidToken    = "INVALID_TOKEN"
	codeTokenExpired    = "TOKEN_EXPIRED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeDuplicateUser   = "DUPLICATE_USER"
	codeInternal        = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

// respondServiceError maps service failures to the error taxonomy. Anything
// unrecognized is logged and surfaced as an opaque internal error.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, codeInvalidCreds, "invalid credentials")
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusConflict, codeDuplicateUser, "user already exists")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, service.ErrPersistence):
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled service error")
		respondError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func timeRFC3339(t time.Time) string {
	return t.Format(time.RFC3339)
}
