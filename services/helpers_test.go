package services

import (
	"concordia-courses/client"
	"concordia-courses/lookups"
	"concordia-courses/models"
	"concordia-courses/storetest"
	"context"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/mock"
)

// the in memory stores must stay usable by the services
var (
	_ ReviewStore       = storetest.ReviewStore{}
	_ InteractionStore  = storetest.InteractionStore{}
	_ NotificationStore = storetest.NotificationStore{}
	_ SubscriptionStore = storetest.SubscriptionStore{}
	_ UserStore         = storetest.UserStore{}
	_ TokenStore        = storetest.TokenStore{}
	_ StatsStore        = storetest.StatsStore{}
)

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) SaveReviewEvent(ctx context.Context, action string, review *models.Review) {
	m.Called(action, review.SubjectID)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendVerification(ctx context.Context, to string, username string, token string) error {
	args := m.Called(to, username, token)
	return args.Error(0)
}

type fixture struct {
	db            *storetest.DB
	tracker       *mockTracker
	reviews       *ReviewService
	interactions  *InteractionService
	notifications *NotificationAggregator
}

func newFixture(wildcard models.Wildcard) *fixture {
	db := storetest.New()
	tracker := &mockTracker{}
	tracker.On("SaveReviewEvent", mock.Anything, mock.Anything).Return()

	interactions := &InteractionService{Interactions: db.Interactions(), Reviews: db.Reviews(), Tracker: tracker}
	notifications := NewNotificationAggregator(db.Notifications(), db.Subscriptions(), wildcard)

	return &fixture{
		db:            db,
		tracker:       tracker,
		interactions:  interactions,
		notifications: notifications,
		reviews:       NewReviewService(db.Reviews(), interactions, notifications, db.Stats(), tracker),
	}
}

func courseReview(author string, courseID string, rating int32) *models.Review {
	return &models.Review{
		Type:       lookups.ReviewCourse,
		CourseID:   courseID,
		UserID:     author,
		Content:    faker.Sentence(),
		Rating:     rating,
		Difficulty: 3,
	}
}

func instructorReview(author string, instructorID string, courseID string, tags ...lookups.InstructorTag) *models.Review {
	return &models.Review{
		Type:         lookups.ReviewInstructor,
		InstructorID: instructorID,
		CourseID:     courseID,
		UserID:       author,
		Content:      faker.Sentence(),
		Rating:       4,
		Difficulty:   2,
		Tags:         tags,
	}
}

func newAuthService(db *storetest.DB, m *mockMailer) *AuthService {
	return NewAuthService(db.Users(), db.Tokens(), m, client.NewRegistry(time.Minute), time.Hour)
}
