package main

import (
	"concordia-courses/controllers"
	"concordia-courses/environment"
	"concordia-courses/middleware"

	"github.com/gin-gonic/gin"
)

func handleRequests(router *gin.Engine) {
	router.Use(middleware.CORSMiddleware(environment.Env.Settings.CORSOrigins))
	router.Use(middleware.SetRequestContextWithTimeout(environment.Env.Settings.ContextTimeout))

	auth := environment.Env.Sessions.TokenAuthMiddleware(controllers.Deny)

	v1 := router.Group("/api/v1")

	v1.GET("/lookups", controllers.ListLookups)
	v1.GET("/stats/:type/:id", controllers.GetStats)

	// auth-related
	a := v1.Group("/auth")
	a.GET("/user", auth, controllers.GetUser)
	a.POST("/signin", controllers.Signin)
	a.GET("/signout", auth, controllers.Signout)
	a.POST("/signup", controllers.Signup)
	a.POST("/authorized", controllers.Authorized)
	a.GET("/resend_token", auth, controllers.ResendToken)

	// reviews
	// GET hat keinen BODY (Angular unterstützt das nicht) - deshalb Parameter
	r := v1.Group("/reviews")
	r.GET("", controllers.ListUserReviews)
	r.GET("/shared", controllers.GetSharedReview)
	r.POST("/filter", controllers.FilterReviews)
	r.POST("", auth, controllers.SaveReview)
	r.PUT("", auth, controllers.SaveReview)
	r.DELETE("", auth, controllers.DeleteReview)
	r.PUT("/upload", controllers.UploadReviews) // shared secret (?key=)

	// voting
	i := v1.Group("/interactions")
	i.GET("", controllers.GetInteractions)
	i.POST("", auth, controllers.AddInteraction)
	i.DELETE("", auth, controllers.RemoveInteraction)
	i.GET("/referrer", auth, controllers.ListReferrerInteractions)

	// notifications
	n := v1.Group("/notifications", auth)
	n.GET("", controllers.ListNotifications)
	n.PUT("", controllers.UpdateNotification)
	n.DELETE("", controllers.DeleteNotification)

	s := v1.Group("/subscriptions", auth)
	s.GET("", controllers.ListSubscriptions)
	s.POST("", controllers.AddSubscription)
	s.DELETE("", controllers.RemoveSubscription)

	// system tools
	m := v1.Group("/monitor", auth)
	m.GET("/throttle/count", controllers.CountThrottled)
	m.GET("/throttle/dump", controllers.DumpThrottled)
	m.POST("/throttle/flush", controllers.FlushThrottled)
}
