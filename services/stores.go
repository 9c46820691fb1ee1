package services

import (
	"concordia-courses/lookups"
	"concordia-courses/models"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services work on these interfaces; models.*Model implement them on MongoDB,
// package storetest in memory.

// ReviewStore persists reviews
type ReviewStore interface {
	FindBySubject(ctx context.Context, userID string, rt lookups.ReviewType, subjectID string) (*models.Review, error)
	Insert(ctx context.Context, review *models.Review) error
	ReplaceContent(ctx context.Context, id primitive.ObjectID, review *models.Review) (*models.Review, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
	Filter(ctx context.Context, limit int64, offset int64, f models.ReviewFilter) ([]models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID, userID string) (int64, error)
	SetCounters(ctx context.Context, target models.ReviewTarget, likes int64, dislikes int64) error
	Import(ctx context.Context, reviews []models.Review) (int64, error)
}

// InteractionStore persists likes and dislikes
type InteractionStore interface {
	Upsert(ctx context.Context, interaction *models.Interaction) error
	Delete(ctx context.Context, referrer string, target models.ReviewTarget) (int64, error)
	Kind(ctx context.Context, referrer string, target models.ReviewTarget) (lookups.InteractionKind, error)
	ListByReferrer(ctx context.Context, referrer string, rt lookups.ReviewType, subjectID string) ([]models.Interaction, error)
	DeleteForReview(ctx context.Context, target models.ReviewTarget) (int64, error)
	Count(ctx context.Context, target models.ReviewTarget) (int64, int64, error)
}

// NotificationStore persists notifications
type NotificationStore interface {
	InsertMany(ctx context.Context, notifications []models.Notification) error
	UpdateReview(ctx context.Context, creator string, courseID string, review models.NotificationReview) (int64, error)
	Remove(ctx context.Context, creator string, recipient *string, courseID string, mode models.Wildcard) (int64, error)
	ListByRecipient(ctx context.Context, recipient string) ([]models.Notification, error)
	SetSeen(ctx context.Context, id primitive.ObjectID, recipient string, seen bool) error
	Delete(ctx context.Context, id primitive.ObjectID, recipient string) error
}

// SubscriptionStore persists course subscriptions
type SubscriptionStore interface {
	Add(ctx context.Context, userID string, courseID string) error
	Remove(ctx context.Context, userID string, courseID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	Subscribers(ctx context.Context, courseID string) ([]string, error)
}

// UserStore persists accounts
type UserStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) (string, error)
	GetByName(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, ID string) (*models.User, error)
	SetVerified(ctx context.Context, ID string) error
}

// TokenStore persists verification tokens
type TokenStore interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Find(ctx context.Context, token string) (*models.VerificationToken, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StatsStore keeps the review stats of courses and instructors
type StatsStore interface {
	Recalculate(ctx context.Context, rt lookups.ReviewType, subjectID string) (*models.SubjectStats, error)
	Get(ctx context.Context, rt lookups.ReviewType, subjectID string) (*models.SubjectStats, error)
}

// EventTracker records review activity (analytics.Tracker)
type EventTracker interface {
	SaveReviewEvent(ctx context.Context, action string, review *models.Review)
}

// compile time checks
var (
	_ ReviewStore       = models.ReviewModel{}
	_ InteractionStore  = models.InteractionModel{}
	_ NotificationStore = models.NotificationModel{}
	_ SubscriptionStore = models.SubscriptionModel{}
	_ UserStore         = models.UserModel{}
	_ TokenStore        = models.TokenModel{}
	_ StatsStore        = models.SubjectModel{}
)
