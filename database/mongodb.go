package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// collection names
const (
	CollUsers         = "users"
	CollTokens        = "verificationTokens"
	CollReviews       = "reviews"
	CollInteractions  = "interactions"
	CollNotifications = "notifications"
	CollSubscriptions = "subscriptions"
	CollCourses       = "courses"
	CollInstructors   = "instructors"
)

// shared connection (private to members of this package)
var client *mongo.Client

// OpenConnection to the database
func OpenConnection() error {
	var err error

	conStr := fmt.Sprintf("mongodb://%s:%s@%s:%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel() // nach 10 Sekunden abbrechen

	client, err = mongo.Connect(ctx, options.Client().ApplyURI(conStr))
	if err != nil {
		return err
	}

	// make sure a connection has actually been made
	return client.Ping(ctx, readpref.Primary())
}

// CloseConnection closes the connection to the DB (when client is shut-down)
func CloseConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// GetConnection returns a reference to the shared connection
func GetConnection() *mongo.Client {
	return client
}

// Indexes lists the indexes every collection needs; the unique ones enforce
// one review per author and subject, one vote per user and review and so on
func Indexes() map[string][]mongo.IndexModel {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetName(name).SetUnique(true)
	}

	return map[string][]mongo.IndexModel{
		CollUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique("user_username")},
		},
		CollTokens: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: unique("token_token")},
		},
		CollReviews: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "subjectId", Value: 1}},
				Options: unique("review_author_subject"),
			},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "subjectId", Value: 1}}, Options: options.Index().SetName("review_subject")},
			{Keys: bson.D{{Key: "courseId", Value: 1}}, Options: options.Index().SetName("review_course")},
		},
		CollInteractions: {
			{
				Keys:    bson.D{{Key: "referrer", Value: 1}, {Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "subjectId", Value: 1}},
				Options: unique("interaction_referrer_target"),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "subjectId", Value: 1}}, Options: options.Index().SetName("interaction_target")},
		},
		CollNotifications: {
			{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("notification_recipient")},
			{Keys: bson.D{{Key: "review.userId", Value: 1}, {Key: "review.courseId", Value: 1}}, Options: options.Index().SetName("notification_review")},
		},
		CollSubscriptions: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}}, Options: unique("subscription_user_course")},
			{Keys: bson.D{{Key: "courseId", Value: 1}}, Options: options.Index().SetName("subscription_course")},
		},
	}
}

// EnsureIndexes creates the indexes (existing ones are left alone)
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range Indexes() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}
