package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/partylinehq/partyline/internal/container"
	"github.com/partylinehq/partyline/internal/handlers"
	"github.com/partylinehq/partyline/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "partyline-api",
			})
		})

		v1.POST("/auth/signup", handlers.SignUp(container.UserService))
		v1.POST("/auth/login", handlers.SignIn(container.UserService))
		v1.POST("/auth/refresh", handlers.RefreshToken(container.UserService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		userRoutes.POST("/register", handlers.RegisterProfile(container.UserService))
		userRoutes.GET("/me", handlers.GetProfile(container.UserService))
		userRoutes.PATCH("/avatar", handlers.UploadAvatar(container.UserService))
		userRoutes.GET("/saved", handlers.ListSavedParties(container.MembershipService))
		userRoutes.POST("/saved/:party_id", handlers.SaveParty(container.MembershipService))
		userRoutes.DELETE("/saved/:party_id", handlers.UnsaveParty(container.MembershipService))
	}

	protected.POST("/hosts/become", handlers.BecomeHost(container.UserService))

	partyRoutes := protected.Group("/parties")
	{
		partyRoutes.POST("/", handlers.CreateParty(container.PartyService))
		partyRoutes.GET("/", handlers.ListParties(container.PartyService))
		partyRoutes.GET("/:id", handlers.GetParty(container.PartyService))
		partyRoutes.POST("/filter", handlers.FilterParties(container.PartyService))
		partyRoutes.POST("/:id/join", handlers.JoinParty(container.MembershipService))
		partyRoutes.POST("/:id/leave", handlers.LeaveParty(container.MembershipService))
		partyRoutes.POST("/:id/end", handlers.EndParty(container.PartyService))
		partyRoutes.POST("/:id/cancel", handlers.CancelParty(container.PartyService))
	}

	return r
}
