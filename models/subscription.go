package models

import (
	"concordia-courses/helpers"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscription makes a user receive notifications about new reviews of a course
type Subscription struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	CourseID  string             `json:"courseId" bson:"courseId" binding:"required"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// SubscriptionModel provides the logics to the data type
type SubscriptionModel struct {
	Collection *mongo.Collection
}

// Add subscribes a user to a course; subscribing twice is not an error
func (m SubscriptionModel) Add(ctx context.Context, userID string, courseID string) error {

	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "courseId", Value: courseID},
	}
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: time.Now()}}},
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Remove unsubscribes a user (returns count of deleted records)
func (m SubscriptionModel) Remove(ctx context.Context, userID string, courseID string) (int64, error) {

	filter := bson.D{
		{Key: "userId", Value: userID},
		{Key: "courseId", Value: courseID},
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.DeletedCount, nil
}

// ListByUser returns the subscriptions of a user
func (m SubscriptionModel) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "courseId", Value: 1}}))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	subscriptions := []Subscription{}
	if err = cursor.All(ctx, &subscriptions); err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return subscriptions, nil
}

// Subscribers returns the ids of the users subscribed to a course
func (m SubscriptionModel) Subscribers(ctx context.Context, courseID string) ([]string, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	values, err := m.Collection.Distinct(ctx, "userId", bson.D{{Key: "courseId", Value: courseID}})
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}

	return ids, nil
}
