package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booklend-backend/internal/shared/middleware"
	"booklend-backend/internal/shared/response"
	"booklend-backend/pkg/container"
)

// SetupRouter wires every endpoint. Auth is required everywhere except
// health and the public nearby search.
func SetupRouter(c *container.Container) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	jwtSecret := c.Config.JWT.Secret

	v1 := r.Group("/api/v1")

	v1.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		})
	})

	books := v1.Group("/books")
	{
		// public: proximity search; authenticated callers get their own
		// books filtered out
		books.GET("/nearby", middleware.OptionalAuth(jwtSecret), c.SearchHandler.Nearby)

		auth := books.Group("")
		auth.Use(middleware.AuthMiddleware(jwtSecret))
		{
			auth.POST("", c.BookHandler.AddBook)
			auth.DELETE("/:id", c.BookHandler.DeleteBook)
			auth.GET("/mine", c.BookHandler.ListMine)
			auth.GET("/borrowed", c.BookHandler.ListBorrowed)

			auth.POST("/:id/request", c.LoanHandler.RequestBook)
			auth.POST("/:id/accept", c.LoanHandler.AcceptRequest)
			auth.POST("/:id/reject", c.LoanHandler.RejectRequest)
			auth.POST("/:id/cancel", c.LoanHandler.CancelRequest)
			auth.POST("/:id/return", c.LoanHandler.ReturnBook)
		}
	}

	loans := v1.Group("/loans")
	loans.Use(middleware.AuthMiddleware(jwtSecret))
	{
		loans.GET("/mine", c.LoanHandler.ListMine)
	}

	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(jwtSecret))
	{
		users.GET("/me/location", c.UserHandler.GetLocation)
		users.PUT("/me/location", c.UserHandler.SaveLocation)
		users.POST("/me/push-tokens", c.UserHandler.RegisterPushToken)
		users.POST("/:id/ratings", c.UserHandler.RateUser)
		users.GET("/:id/ratings", c.UserHandler.GetRating)
	}

	notifications := v1.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(jwtSecret))
	{
		notifications.GET("", c.NotificationHandler.List)
		notifications.GET("/unread-count", c.NotificationHandler.UnreadCount)
		notifications.POST("/:id/read", c.NotificationHandler.MarkRead)
	}

	return r
}
