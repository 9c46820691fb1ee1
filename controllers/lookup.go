package controllers

import (
	"concordia-courses/environment"
	"concordia-courses/lookups"

	"github.com/gin-gonic/gin"
)

// ListLookups returns review types, interaction kinds and instructor tags
func ListLookups(c *gin.Context) {
	ok(c, lookups.All())
}

// GetStats returns rating and difficulty averages of a course or instructor
func GetStats(c *gin.Context) {

	rt, err := lookups.ParseReviewType(c.Param("type"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	stats, err := environment.Env.Reviews.SubjectStats(c.Request.Context(), rt, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, stats)
}
