package environment

import (
	"concordia-courses/analytics"
	"concordia-courses/archive"
	"concordia-courses/authentication"
	"concordia-courses/client"
	"concordia-courses/database"
	"concordia-courses/mailer"
	"concordia-courses/models"
	"concordia-courses/services"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Environment is used for dependency-injection (package de-coupling)
type Environment struct {
	Settings      Settings
	Sessions      *authentication.Registry
	Auth          *services.AuthService
	Reviews       *services.ReviewService
	Interactions  *services.InteractionService
	Notifications *services.NotificationAggregator
	Archiver      archive.Archiver
	Tracker       *analytics.Tracker
	Throttle      *client.Registry // resend verification codes
}

// Stores groups the persistence used by the services (MongoDB models or storetest)
type Stores struct {
	Reviews       services.ReviewStore
	Interactions  services.InteractionStore
	Notifications services.NotificationStore
	Subscriptions services.SubscriptionStore
	Users         services.UserStore
	Tokens        services.TokenStore
	Stats         services.StatsStore
}

// MongoStores creates the models on the collections of db
func MongoStores(db *mongo.Database) Stores {
	reviews := db.Collection(database.CollReviews)
	return Stores{
		Reviews:       models.ReviewModel{Collection: reviews},
		Interactions:  models.InteractionModel{Collection: db.Collection(database.CollInteractions)},
		Notifications: models.NotificationModel{Collection: db.Collection(database.CollNotifications)},
		Subscriptions: models.SubscriptionModel{Collection: db.Collection(database.CollSubscriptions)},
		Users:         models.UserModel{Collection: db.Collection(database.CollUsers)},
		Tokens:        models.TokenModel{Collection: db.Collection(database.CollTokens)},
		Stats: models.SubjectModel{
			Reviews:     reviews,
			Courses:     db.Collection(database.CollCourses),
			Instructors: db.Collection(database.CollInstructors),
		},
	}
}

// Side holds the optional side channels; nil members fall back to a no-op
type Side struct {
	Tracker  *analytics.Tracker
	Mailer   mailer.Mailer
	Archiver archive.Archiver
}

// New wires the services (constructor)
func New(settings Settings, stores Stores, sessions *authentication.Registry, side Side) *Environment {
	env := &Environment{
		Settings: settings,
		Sessions: sessions,
		Tracker:  side.Tracker,
		Archiver: side.Archiver,
		Throttle: client.NewRegistry(settings.ResendCooldown),
	}

	// always create the objects so no futher checking is needed in the services
	if env.Tracker == nil {
		env.Tracker = analytics.NewTracker(false, nil)
	}
	if env.Archiver == nil {
		env.Archiver = archive.NopArchiver{}
	}
	m := side.Mailer
	if m == nil {
		m = mailer.LogMailer{}
	}

	env.Interactions = &services.InteractionService{
		Interactions: stores.Interactions,
		Reviews:      stores.Reviews,
		Tracker:      env.Tracker,
	}
	env.Notifications = services.NewNotificationAggregator(stores.Notifications, stores.Subscriptions,
		models.ParseWildcard(settings.Wildcard))
	env.Reviews = services.NewReviewService(stores.Reviews, env.Interactions, env.Notifications,
		stores.Stats, env.Tracker)
	env.Auth = services.NewAuthService(stores.Users, stores.Tokens, m, env.Throttle, settings.TokenTTL)

	return env
}

// Env is the singleton registry
var Env *Environment

// Initialize injects the connections into the models and services
// (do not confuse with package init)
func Initialize(settings Settings, redisClient *redis.Client, side Side) {
	db := database.GetConnection().Database(settings.DBName)
	sessions := authentication.NewRegistry(redisClient, settings.AccessSecret, settings.CookieName)
	Env = New(settings, MongoStores(db), sessions, side)
}
