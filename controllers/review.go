package controllers

import (
	"concordia-courses/authentication"
	"concordia-courses/environment"
	"concordia-courses/models"
	"concordia-courses/services"

	"github.com/gin-gonic/gin"
)

// ListUserReviews returns the reviews of an author (?userId=)
func ListUserReviews(c *gin.Context) {

	reviews, err := environment.Env.Reviews.ListByUser(c.Request.Context(), c.Query("userId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, reviews)
}

// GetSharedReview returns a single review (?id=)
func GetSharedReview(c *gin.Context) {

	review, err := environment.Env.Reviews.Get(c.Request.Context(), c.Query("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, review)
}

// FilterReviews returns a page of reviews (?limit=&offset=)
func FilterReviews(c *gin.Context) {

	var filter models.ReviewFilter

	// an empty body means "no criteria"
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&filter); err != nil {
			invalidJSON(c, err)
			return
		}
	}

	reviews, err := environment.Env.Reviews.Filter(c.Request.Context(),
		queryInt64(c, "limit"), queryInt64(c, "offset"), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, reviews)
}

// SaveReview adds the review of the session's user or replaces the existing one (POST and PUT)
func SaveReview(c *gin.Context) {

	var review models.Review

	if err := c.ShouldBindJSON(&review); err != nil {
		invalidJSON(c, err)
		return
	}

	// the author is always the session's user
	review.UserID = authentication.UserID(c)

	res, err := environment.Env.Reviews.AddOrUpdate(c.Request.Context(), &review)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, res)
}

// DeleteReview removes a review of the session's user with its votes and notifications
func DeleteReview(c *gin.Context) {

	var data services.DeletePayload

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	if err := environment.Env.Reviews.Delete(c.Request.Context(), authentication.UserID(c), data); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Review was deleted successfully")
}
