package services

import (
	"concordia-courses/helpers"
	"concordia-courses/models"
	"context"
	"time"
)

// NotificationAggregator derives notifications from review mutations:
// subscribers of a course are told about new reviews, the snapshots follow edits
// and deleting a review removes them.
type NotificationAggregator struct {
	Notifications NotificationStore
	Subscriptions SubscriptionStore
	Wildcard      models.Wildcard
	now           func() time.Time
}

// NewNotificationAggregator wires the aggregator
func NewNotificationAggregator(n NotificationStore, s SubscriptionStore, wildcard models.Wildcard) *NotificationAggregator {
	return &NotificationAggregator{
		Notifications: n,
		Subscriptions: s,
		Wildcard:      wildcard,
		now:           time.Now,
	}
}

// OnReviewAdded notifies every subscriber of the review's course except the author;
// returns the number of notifications created
func (a *NotificationAggregator) OnReviewAdded(ctx context.Context, review *models.Review) (int, error) {

	if review.CourseID == "" {
		return 0, nil
	}

	subscribers, err := a.Subscriptions.Subscribers(ctx, review.CourseID)
	if err != nil {
		return 0, err
	}

	snapshot := models.Snapshot(review)
	created := a.now()

	notifications := make([]models.Notification, 0, len(subscribers))
	for _, s := range subscribers {
		if s == review.UserID {
			continue
		}
		notifications = append(notifications, models.Notification{
			RecipientID: s,
			Review:      snapshot,
			CreatedAt:   created,
		})
	}

	if err = a.Notifications.InsertMany(ctx, notifications); err != nil {
		return 0, err
	}

	return len(notifications), nil
}

// OnReviewUpdated refreshes the snapshots; courseID is where the notifications were created
// (an instructor review may have moved to another course)
func (a *NotificationAggregator) OnReviewUpdated(ctx context.Context, courseID string, review *models.Review) (int64, error) {
	return a.Notifications.UpdateReview(ctx, review.UserID, courseID, models.Snapshot(review))
}

// OnReviewDeleted removes notifications by creator, recipient and course;
// a nil recipient is resolved by the wildcard mode
func (a *NotificationAggregator) OnReviewDeleted(ctx context.Context, creator string, recipient *string, courseID string) (int64, error) {
	return a.Notifications.Remove(ctx, creator, recipient, courseID, a.Wildcard)
}

// List returns the notifications of a user
func (a *NotificationAggregator) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return a.Notifications.ListByRecipient(ctx, userID)
}

// MarkSeen flags a notification of the user as (un)seen
func (a *NotificationAggregator) MarkSeen(ctx context.Context, userID string, id string, seen bool) error {
	return a.Notifications.SetSeen(ctx, helpers.ObjectID(id), userID, seen)
}

// Delete removes a notification of the user
func (a *NotificationAggregator) Delete(ctx context.Context, userID string, id string) error {
	return a.Notifications.Delete(ctx, helpers.ObjectID(id), userID)
}

// Subscribe makes the user receive notifications about a course
func (a *NotificationAggregator) Subscribe(ctx context.Context, userID string, courseID string) error {
	return a.Subscriptions.Add(ctx, userID, courseID)
}

// Unsubscribe stops notifications about a course
func (a *NotificationAggregator) Unsubscribe(ctx context.Context, userID string, courseID string) error {
	_, err := a.Subscriptions.Remove(ctx, userID, courseID)
	return err
}

// ListSubscriptions returns the courses a user is subscribed to
func (a *NotificationAggregator) ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	return a.Subscriptions.ListByUser(ctx, userID)
}
