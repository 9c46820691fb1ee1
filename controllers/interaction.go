package controllers

import (
	"concordia-courses/authentication"
	"concordia-courses/environment"
	"concordia-courses/lookups"
	"concordia-courses/models"

	"github.com/gin-gonic/gin"
)

// targetFromQuery reads the review key from ?type=&courseId=&instructorId=&userId=
func targetFromQuery(c *gin.Context) (models.ReviewTarget, error) {

	rt, err := lookups.ParseReviewType(c.Query("type"))
	if err != nil {
		return models.ReviewTarget{}, err
	}

	return models.ReviewTarget{
		Type:         rt,
		CourseID:     c.Query("courseId"),
		InstructorID: c.Query("instructorId"),
		UserID:       c.Query("userId"),
	}, nil
}

// GetInteractions returns the votes on a review and the vote of ?referrer= (if given)
func GetInteractions(c *gin.Context) {

	target, err := targetFromQuery(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	counts, err := environment.Env.Interactions.Counts(c.Request.Context(), c.Query("referrer"), target)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, counts)
}

// AddInteraction likes or dislikes a review as the session's user
func AddInteraction(c *gin.Context) {

	var data models.Interaction

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	counts, err := environment.Env.Interactions.Add(c.Request.Context(), authentication.UserID(c), &data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, counts)
}

// RemoveInteraction revokes the vote of the session's user
func RemoveInteraction(c *gin.Context) {

	var target models.ReviewTarget

	if err := c.ShouldBindJSON(&target); err != nil {
		invalidJSON(c, err)
		return
	}

	counts, err := environment.Env.Interactions.Remove(c.Request.Context(), authentication.UserID(c), target)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, counts)
}

// ListReferrerInteractions returns the votes of the session's user (?type=&subjectId= optional)
func ListReferrerInteractions(c *gin.Context) {

	var rt lookups.ReviewType
	if t := c.Query("type"); t != "" {
		var err error
		if rt, err = lookups.ParseReviewType(t); err != nil {
			abortWithError(c, err)
			return
		}
	}

	list, err := environment.Env.Interactions.ListByReferrer(c.Request.Context(),
		authentication.UserID(c), rt, c.Query("subjectId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, list)
}
