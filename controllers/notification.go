package controllers

import (
	"concordia-courses/authentication"
	"concordia-courses/environment"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the notifications of the session's user
func ListNotifications(c *gin.Context) {

	list, err := environment.Env.Notifications.List(c.Request.Context(), authentication.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, list)
}

// UpdateNotification marks a notification as (un)seen
func UpdateNotification(c *gin.Context) {

	data := struct {
		ID   string `json:"id" binding:"required"`
		Seen bool   `json:"seen"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	err := environment.Env.Notifications.MarkSeen(c.Request.Context(), authentication.UserID(c), data.ID, data.Seen)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Notification updated")
}

// DeleteNotification removes a notification of the session's user
func DeleteNotification(c *gin.Context) {

	data := struct {
		ID string `json:"id" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	if err := environment.Env.Notifications.Delete(c.Request.Context(), authentication.UserID(c), data.ID); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Notification deleted")
}
