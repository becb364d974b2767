package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
)

type createPartyRequest struct {
	Name         string     `json:"name" binding:"required"`
	Description  string     `json:"description"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	Address      string     `json:"address"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	MaxAttendees *int       `json:"max_attendees"`
	Hashtags     string     `json:"hashtags"`
}

func CreateParty(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}

		var req createPartyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		party, err := ps.CreateParty(c.Request.Context(), claims.UserID, &models.Party{
			Name:         req.Name,
			Description:  req.Description,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			Address:      req.Address,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			MaxAttendees: req.MaxAttendees,
			Hashtags:     req.Hashtags,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(gin.H{"party_id": party.ID}, "party created successfully"))
	}
}

func ListParties(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitInt, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limitInt <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
			return
		}
		offsetInt, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offsetInt < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
			return
		}

		parties, total, err := ps.ListParties(c.Request.Context(), offsetInt, limitInt)
		if err != nil {
			abortWithError(c, err)
			return
		}

		page := (offsetInt / limitInt) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(parties, page, limitInt, total))
	}
}

func GetParty(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyID, ok := pathID(c, "id")
		if !ok {
			return
		}

		detail, err := ps.GetParty(c.Request.Context(), partyID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(detail, ""))
	}
}

func FilterParties(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters models.PartyFilters
		if err := c.ShouldBindJSON(&filters); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		parties, err := ps.FilterParties(c.Request.Context(), &filters)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"parties": parties}, ""))
	}
}

func EndParty(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if _, err := ps.EndParty(c.Request.Context(), claims.UserID, partyID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "party ended successfully"))
	}
}

func CancelParty(ps *services.PartyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			return
		}
		partyID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if _, err := ps.CancelParty(c.Request.Context(), claims.UserID, partyID); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "party cancelled successfully"))
	}
}
