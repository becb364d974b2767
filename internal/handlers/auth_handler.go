package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func SignUp(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		res, err := us.SignUp(c.Request.Context(), creds.Email, creds.Password)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(res, "sign up successful, verify your email"))
	}
}

func SignIn(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		res, err := us.SignIn(c.Request.Context(), creds.Email, creds.Password)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setTokenCookies(c, res)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"user_id": res.User.ID}, "login successful"))
	}
}

func RefreshToken(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("refresh token not found"))
			return
		}

		res, err := us.RefreshToken(c.Request.Context(), refreshToken)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setTokenCookies(c, res)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "token refreshed"))
	}
}

func setTokenCookies(c *gin.Context, res *types.TokenResponse) {
	isProduction := os.Getenv("GIN_MODE") == "release"
	c.SetCookie("access_token", res.AccessToken, res.ExpiresIn, "/", "", isProduction, true)
	c.SetCookie("refresh_token", res.RefreshToken, 3600*24*30, "/", "", isProduction, true)
}
