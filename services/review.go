package services

import (
	"concordia-courses/analytics"
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"concordia-courses/lookups"
	"concordia-courses/models"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// DeletePayload is what the client sends to delete a review; only the id is used,
// type and subject are taken from the stored review
type DeletePayload struct {
	ID           string             `json:"id" binding:"required"`
	Type         lookups.ReviewType `json:"type"`
	CourseID     string             `json:"courseId"`
	InstructorID string             `json:"instructorId"`
}

// ReviewService orchestrates review mutations: the review itself, the votes on it,
// the notifications about it and the stats of its subject
type ReviewService struct {
	Reviews       ReviewStore
	Interactions  *InteractionService
	Notifications *NotificationAggregator
	Stats         StatsStore
	Tracker       EventTracker
	now           func() time.Time
}

// NewReviewService wires the service
func NewReviewService(reviews ReviewStore, interactions *InteractionService, notifications *NotificationAggregator, stats StatsStore, tracker EventTracker) *ReviewService {
	return &ReviewService{
		Reviews:       reviews,
		Interactions:  interactions,
		Notifications: notifications,
		Stats:         stats,
		Tracker:       tracker,
		now:           time.Now,
	}
}

// AddOrUpdate saves the review of an author on a subject: a second review on the same
// subject replaces the content of the first and keeps its id, timestamp and counters
func (s *ReviewService) AddOrUpdate(ctx context.Context, review *models.Review) (*models.Review, error) {

	review.Normalize()
	if err := models.ValidateReview(review); err != nil {
		return nil, err
	}

	existing, err := s.Reviews.FindBySubject(ctx, review.UserID, review.Type, review.SubjectID)
	if err == nil {
		return s.replace(ctx, existing, review)
	}
	if !errors.Is(err, apperror.ErrNoData) {
		return nil, err
	}

	review.ID = primitive.NilObjectID
	review.Timestamp = s.now()
	review.UpdatedAt = time.Time{}
	review.Likes = 0
	review.Dislikes = 0

	err = s.Reviews.Insert(ctx, review)
	if err != nil {
		if !helpers.IsDuplicateKey(err) {
			return nil, err
		}
		// a concurrent request of the same author won the insert
		existing, err = s.Reviews.FindBySubject(ctx, review.UserID, review.Type, review.SubjectID)
		if err != nil {
			return nil, err
		}
		return s.replace(ctx, existing, review)
	}

	if _, err = s.Notifications.OnReviewAdded(ctx, review); err != nil {
		logrus.WithField("review", review.ID.Hex()).Error(err)
	}
	s.afterChange(ctx, analytics.ActionAdded, review)

	return review, nil
}

func (s *ReviewService) replace(ctx context.Context, existing *models.Review, review *models.Review) (*models.Review, error) {

	res, err := s.Reviews.ReplaceContent(ctx, existing.ID, review)
	if err != nil {
		return nil, err
	}

	if _, err = s.Notifications.OnReviewUpdated(ctx, existing.CourseID, res); err != nil {
		logrus.WithField("review", res.ID.Hex()).Error(err)
	}
	s.afterChange(ctx, analytics.ActionUpdated, res)

	return res, nil
}

// afterChange recomputes the subject's stats and records the event; failures are only logged
func (s *ReviewService) afterChange(ctx context.Context, action string, review *models.Review) {

	if _, err := s.Stats.Recalculate(ctx, review.Type, review.SubjectID); err != nil {
		logrus.WithFields(logrus.Fields{
			"type":    review.Type,
			"subject": review.SubjectID,
		}).Error(err)
	}

	if s.Tracker != nil {
		s.Tracker.SaveReviewEvent(ctx, action, review)
	}
}

// Delete removes the review of author together with the votes on it and the
// notifications about it. Deleting a review that doesn't exist is not an error.
// The cascade uses the stored review, the ids of the payload are not trusted.
func (s *ReviewService) Delete(ctx context.Context, author string, p DeletePayload) error {

	notFound := func() error {
		logrus.WithFields(logrus.Fields{
			"review": p.ID,
			"author": author,
		}).Warn("review to delete not found")
		return nil
	}

	oid := helpers.ObjectID(p.ID)
	if oid.IsZero() {
		return notFound()
	}

	review, err := s.Reviews.Get(ctx, oid)
	if err != nil {
		if errors.Is(err, apperror.ErrNoData) {
			return notFound()
		}
		return err
	}
	// nur eigene Reviews
	if review.UserID != author {
		return notFound()
	}
	review.SubjectID = models.SubjectID(review.Type, review.CourseID, review.InstructorID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Interactions.DeleteForReview(gctx, review.Target())
		return err
	})
	g.Go(func() error {
		_, err := s.Notifications.OnReviewDeleted(gctx, author, nil, review.CourseID)
		return err
	})
	if err = g.Wait(); err != nil {
		return err
	}

	deleted, err := s.Reviews.Delete(ctx, review.ID, author)
	if err != nil {
		return err
	}
	if deleted == 0 {
		// removed by a concurrent request
		return notFound()
	}

	s.afterChange(ctx, analytics.ActionDeleted, review)

	return nil
}

// Filter returns a page of matching reviews
func (s *ReviewService) Filter(ctx context.Context, limit int64, offset int64, f models.ReviewFilter) ([]models.Review, error) {
	limit, offset = models.ClampPage(limit, offset)
	return s.Reviews.Filter(ctx, limit, offset, f)
}

// ListByUser returns the reviews of an author
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.Reviews.ListByUser(ctx, userID)
}

// Get returns a single review (shared links)
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	oid := helpers.ObjectID(id)
	if oid.IsZero() {
		return nil, apperror.ErrNoData
	}
	return s.Reviews.Get(ctx, oid)
}

// SubjectStats returns the review stats of a course or instructor
func (s *ReviewService) SubjectStats(ctx context.Context, rt lookups.ReviewType, subjectID string) (*models.SubjectStats, error) {
	return s.Stats.Get(ctx, rt, subjectID)
}

// Import upserts a bulk file of reviews and refreshes the stats of every subject touched
func (s *ReviewService) Import(ctx context.Context, reviews []models.Review) (int64, error) {

	n, err := s.Reviews.Import(ctx, reviews)
	if err != nil {
		return 0, err
	}

	type subject struct {
		rt lookups.ReviewType
		id string
	}
	seen := make(map[subject]bool)
	for i := range reviews {
		key := subject{reviews[i].Type, models.SubjectID(reviews[i].Type, reviews[i].CourseID, reviews[i].InstructorID)}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err = s.Stats.Recalculate(ctx, key.rt, key.id); err != nil {
			logrus.WithField("subject", key.id).Error(err)
		}
	}

	return n, nil
}
