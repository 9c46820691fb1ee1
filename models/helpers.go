package models

import (
	"concordia-courses/lookups"
	"context"
	"time"
)

// every store call is cancelled after this, even when the request context lives longer
const dbTimeout = 10 * time.Second

// page size limits
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

func dbContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbTimeout)
}

// SubjectID returns the id of what a review is about:
// the course for course reviews, the instructor for instructor reviews
func SubjectID(rt lookups.ReviewType, courseID string, instructorID string) string {
	if rt == lookups.ReviewInstructor {
		return instructorID
	}
	return courseID
}

// ClampPage keeps limit within [1, MaxLimit] (DefaultLimit if none) and offset non-negative
func ClampPage(limit int64, offset int64) (int64, int64) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
