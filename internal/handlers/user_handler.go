package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Bio         string `json:"bio"`
}

// RegisterProfile creates the datastore profile for the verified caller.
func RegisterProfile(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			return
		}
		if claims.Registered() {
			c.JSON(http.StatusConflict, models.ErrorResponse("user already exists"))
			return
		}

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user, err := us.RegisterProfile(c.Request.Context(), claims.AuthID, &models.User{
			Username:    req.Username,
			DisplayName: req.DisplayName,
			Email:       req.Email,
			Phone:       req.Phone,
			Bio:         req.Bio,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "user registered successfully"))
	}
}

func GetProfile(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		user, err := us.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

type avatarRequest struct {
	Image string `json:"image" binding:"required"`
}

func UploadAvatar(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		var req avatarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		url, err := us.UploadAvatar(c.Request.Context(), claims.UserID, req.Image)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"avatar_url": url}, "avatar updated"))
	}
}

// BecomeHost is the stubbed host-onboarding endpoint.
func BecomeHost(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		host, err := us.BecomeHost(c.Request.Context(), claims.UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(host, "host profile created"))
	}
}
