package models

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"concordia-courses/lookups"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationReview is the snapshot of the review a notification is about
type NotificationReview struct {
	ID           primitive.ObjectID `json:"id" bson:"id"`
	UserID       string             `json:"userId" bson:"userId"` // creator
	CourseID     string             `json:"courseId" bson:"courseId"`
	InstructorID string             `json:"instructorId" bson:"instructorId"`
	Type         lookups.ReviewType `json:"type" bson:"type"`
	Content      string             `json:"content" bson:"content"`
	Rating       int32              `json:"rating" bson:"rating"`
	Difficulty   int32              `json:"difficulty" bson:"difficulty"`
	Timestamp    time.Time          `json:"timestamp" bson:"timestamp"`
}

// Notification tells a subscriber of a course about a review
type Notification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RecipientID string             `json:"recipientId" bson:"recipientId"`
	Review      NotificationReview `json:"review" bson:"review"`
	Seen        bool               `json:"seen" bson:"seen"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

// Snapshot copies the fields of a review which are shown in notifications
func Snapshot(r *Review) NotificationReview {
	return NotificationReview{
		ID:           r.ID,
		UserID:       r.UserID,
		CourseID:     r.CourseID,
		InstructorID: r.InstructorID,
		Type:         r.Type,
		Content:      r.Content,
		Rating:       r.Rating,
		Difficulty:   r.Difficulty,
		Timestamp:    r.Timestamp,
	}
}

// Wildcard decides what a missing recipient matches when notifications are removed
type Wildcard string

// Wildcard modes
const (
	WildcardAny    Wildcard = "any"    // no recipient matches every recipient
	WildcardStrict Wildcard = "strict" // no recipient matches only notifications without one
)

// ParseWildcard defaults to WildcardAny
func ParseWildcard(s string) Wildcard {
	if Wildcard(s) == WildcardStrict {
		return WildcardStrict
	}
	return WildcardAny
}

// RemovalFilter builds the query to remove the notifications about a creator's review of a course
func RemovalFilter(creator string, recipient *string, courseID string, mode Wildcard) bson.D {

	filter := bson.D{
		{Key: "review.userId", Value: creator},
		{Key: "review.courseId", Value: courseID},
	}

	switch {
	case recipient != nil:
		filter = append(filter, bson.E{Key: "recipientId", Value: *recipient})
	case mode == WildcardStrict:
		filter = append(filter, bson.E{Key: "recipientId", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}})
	}

	return filter
}

// NotificationModel provides the logics to the data type
type NotificationModel struct {
	Collection *mongo.Collection
}

// InsertMany stores new notifications
func (m NotificationModel) InsertMany(ctx context.Context, notifications []Notification) error {

	if len(notifications) == 0 {
		return nil
	}

	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		if notifications[i].ID.IsZero() {
			notifications[i].ID = primitive.NewObjectID()
		}
		docs[i] = notifications[i]
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// UpdateReview refreshes the snapshot in the notifications about a review;
// recipients and seen flags are kept
func (m NotificationModel) UpdateReview(ctx context.Context, creator string, courseID string, review NotificationReview) (int64, error) {

	filter := bson.D{
		{Key: "review.userId", Value: creator},
		{Key: "review.courseId", Value: courseID},
		{Key: "review.id", Value: review.ID},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "review", Value: review}}}}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.ModifiedCount, nil
}

// Remove deletes notifications by creator, recipient and course (see RemovalFilter)
func (m NotificationModel) Remove(ctx context.Context, creator string, recipient *string, courseID string, mode Wildcard) (int64, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteMany(ctx, RemovalFilter(creator, recipient, courseID, mode))
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.DeletedCount, nil
}

// ListByRecipient returns the notifications of a user, newest first
func (m NotificationModel) ListByRecipient(ctx context.Context, recipient string) ([]Notification, error) {

	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	})

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.D{{Key: "recipientId", Value: recipient}}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	notifications := []Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return notifications, nil
}

// SetSeen marks a notification of the recipient
func (m NotificationModel) SetSeen(ctx context.Context, id primitive.ObjectID, recipient string, seen bool) error {

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "recipientId", Value: recipient},
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "seen", Value: seen}}}}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNoData
	}

	return nil
}

// Delete removes a notification of the recipient
func (m NotificationModel) Delete(ctx context.Context, id primitive.ObjectID, recipient string) error {

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "recipientId", Value: recipient},
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if res.DeletedCount == 0 {
		return apperror.ErrNoData
	}

	return nil
}
