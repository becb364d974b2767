package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
)

func JoinParty(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := ms.JoinParty(c.Request.Context(), partyID, claims.UserID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "successfully joined party"))
	}
}

func LeaveParty(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := ms.LeaveParty(c.Request.Context(), partyID, claims.UserID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "successfully left party"))
	}
}

func SaveParty(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "party_id")
		if !ok {
			return
		}

		if err := ms.SaveParty(c.Request.Context(), claims.UserID, partyID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "party saved"))
	}
}

func UnsaveParty(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "party_id")
		if !ok {
			return
		}

		if err := ms.UnsaveParty(c.Request.Context(), claims.UserID, partyID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "party removed from saved"))
	}
}

func ListSavedParties(ms *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		parties, err := ms.ListSavedParties(c.Request.Context(), claims.UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"parties": parties}, ""))
	}
}
