package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/partylinehq/partyline/internal/helpers"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// AuthMiddleware validates the access token cookie against the identity
// provider, refreshing it once from the refresh cookie when expired, and
// stores AuthClaims in the context. A verified identity without a profile
// still passes; handlers that need a profile check Registered().
func AuthMiddleware(userService *services.UserService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("access token not found"))
			c.Abort()
			return
		}

		claims, err := helpers.ValidateToken(token)
		if err != nil {
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
				c.Abort()
				return
			}

			tokenRes, refreshErr := userService.RefreshToken(c.Request.Context(), refreshToken)
			if refreshErr != nil {
				logger.Error("Token refresh failed", "error", refreshErr)
				c.JSON(http.StatusUnauthorized, models.ErrorResponse("token expired and refresh failed"))
				c.Abort()
				return
			}

			isProduction := os.Getenv("GIN_MODE") == "release"
			c.SetCookie("access_token", tokenRes.AccessToken, tokenRes.ExpiresIn, "/", "", isProduction, true)
			c.SetCookie("refresh_token", tokenRes.RefreshToken, 3600*24*30, "/", "", isProduction, true)

			claims, err = helpers.ValidateToken(tokenRes.AccessToken)
			if err != nil {
				c.JSON(http.StatusUnauthorized, models.ErrorResponse("refreshed token validation failed"))
				c.Abort()
				return
			}
		}

		authClaims := &helpers.AuthClaims{
			CustomClaims: claims,
			AuthID:       claims.Subject,
			Email:        claims.Email,
		}

		// Attach the caller's profile when the identity has registered one.
		user, err := userService.GetByAuthID(c.Request.Context(), claims.Subject)
		switch {
		case err == nil:
			authClaims.UserID = user.ID
			authClaims.Username = user.Username
			authClaims.IsHost = user.IsHost
		case errors.Is(err, models.ErrNotFound):
			// unregistered identity; only /users/register is useful to it
		default:
			logger.Error("Profile lookup failed", "auth_id", claims.Subject, "error", err)
		}

		c.Set("user", authClaims)
		c.Next()
	}
}
