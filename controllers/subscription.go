package controllers

import (
	"concordia-courses/authentication"
	"concordia-courses/environment"
	"concordia-courses/models"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListSubscriptions returns the courses the session's user follows
func ListSubscriptions(c *gin.Context) {

	list, err := environment.Env.Notifications.ListSubscriptions(c.Request.Context(), authentication.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, list)
}

// AddSubscription follows a course
func AddSubscription(c *gin.Context) {

	var data models.Subscription

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	err := environment.Env.Notifications.Subscribe(c.Request.Context(), authentication.UserID(c), strings.TrimSpace(data.CourseID))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Subscribed")
}

// RemoveSubscription unfollows a course
func RemoveSubscription(c *gin.Context) {

	var data models.Subscription

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	err := environment.Env.Notifications.Unsubscribe(c.Request.Context(), authentication.UserID(c), strings.TrimSpace(data.CourseID))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Unsubscribed")
}
