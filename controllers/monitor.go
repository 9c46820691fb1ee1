package controllers

import (
	"concordia-courses/environment"
	"net/http"

	"github.com/gin-gonic/gin"
)

// system tools: the resend throttle

// CountThrottled returns the number of users in the resend registry
func CountThrottled(c *gin.Context) {
	ok(c, environment.Env.Throttle.Count())
}

// DumpThrottled lists (max. 50) entries of the resend registry
func DumpThrottled(c *gin.Context) {
	ok(c, environment.Env.Throttle.Dump(50))
}

// FlushThrottled removes the entries whose cooldown is over
func FlushThrottled(c *gin.Context) {
	environment.Env.Throttle.Flush()
	c.Status(http.StatusOK)
}
