// Package storetest keeps the stores used by the services in memory, for tests
// that don't need a MongoDB deployment.
package storetest

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"concordia-courses/lookups"
	"concordia-courses/models"
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateKey is what MongoDB answers when a unique index is violated
var ErrDuplicateKey = mongo.WriteException{
	WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
}

// DB holds the collections; the stores below share one DB so stats can read the reviews
type DB struct {
	sync.RWMutex
	reviews       map[primitive.ObjectID]models.Review
	interactions  []models.Interaction
	notifications map[primitive.ObjectID]models.Notification
	subscriptions []models.Subscription
	users         map[primitive.ObjectID]models.User
	tokens        map[primitive.ObjectID]models.VerificationToken
	stats         map[string]models.SubjectStats // key is type + ":" + subject
}

// New creates an empty database
func New() *DB {
	return &DB{
		reviews:       make(map[primitive.ObjectID]models.Review),
		notifications: make(map[primitive.ObjectID]models.Notification),
		users:         make(map[primitive.ObjectID]models.User),
		tokens:        make(map[primitive.ObjectID]models.VerificationToken),
		stats:         make(map[string]models.SubjectStats),
	}
}

// ---------------------------------------------------------------- reviews

// ReviewStore is the in memory version of models.ReviewModel
type ReviewStore struct{ *DB }

// Reviews returns the review store
func (db *DB) Reviews() ReviewStore { return ReviewStore{db} }

func (s ReviewStore) findBySubject(userID string, rt lookups.ReviewType, subjectID string) (models.Review, bool) {
	for _, r := range s.reviews {
		if r.UserID == userID && r.Type == rt && r.SubjectID == subjectID {
			return r, true
		}
	}
	return models.Review{}, false
}

// FindBySubject returns the review of an author on a subject
func (s ReviewStore) FindBySubject(ctx context.Context, userID string, rt lookups.ReviewType, subjectID string) (*models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	r, ok := s.findBySubject(userID, rt, subjectID)
	if !ok {
		return nil, apperror.ErrNoData
	}
	return &r, nil
}

// Insert adds a review; the unique author/subject key is enforced
func (s ReviewStore) Insert(ctx context.Context, review *models.Review) error {
	s.Lock()
	defer s.Unlock()

	review.Normalize()
	if _, ok := s.findBySubject(review.UserID, review.Type, review.SubjectID); ok {
		return ErrDuplicateKey
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	s.reviews[review.ID] = *review
	return nil
}

// ReplaceContent overwrites the editable fields
func (s ReviewStore) ReplaceContent(ctx context.Context, id primitive.ObjectID, review *models.Review) (*models.Review, error) {
	s.Lock()
	defer s.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, apperror.ErrNoData
	}

	review.Normalize()
	r.Content = review.Content
	r.Rating = review.Rating
	r.Difficulty = review.Difficulty
	r.Tags = review.Tags
	r.UpdatedAt = time.Now()
	if review.Type == lookups.ReviewInstructor {
		r.CourseID = review.CourseID
	}
	s.reviews[id] = r

	return &r, nil
}

// Get reads a single review
func (s ReviewStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, apperror.ErrNoData
	}
	return &r, nil
}

// ListByUser returns the reviews of an author, newest first
func (s ReviewStore) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.Filter(ctx, math.MaxInt32, 0, models.ReviewFilter{UserID: userID, SortBy: models.SortRecent})
}

func matches(r models.Review, f models.ReviewFilter) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if f.InstructorID != "" && r.InstructorID != f.InstructorID {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	for _, t := range f.Tags {
		found := false
		for _, rt := range r.Tags {
			if rt == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Filter returns a page of matching reviews, ordered like models.BuildSort
func (s ReviewStore) Filter(ctx context.Context, limit int64, offset int64, f models.ReviewFilter) ([]models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	res := []models.Review{}
	for _, r := range s.reviews {
		if matches(r, f) {
			res = append(res, r)
		}
	}

	sort.Slice(res, func(i, j int) bool {
		a, b := res[i], res[j]
		switch f.SortBy {
		case models.SortRecent:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
		case models.SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case models.SortLikes:
			if a.Likes != b.Likes {
				return a.Likes > b.Likes
			}
		}
		return a.ID.Hex() < b.ID.Hex()
	})

	if offset >= int64(len(res)) {
		return []models.Review{}, nil
	}
	end := offset + limit
	if end > int64(len(res)) {
		end = int64(len(res))
	}
	return res[offset:end], nil
}

// Delete removes a review of an author
func (s ReviewStore) Delete(ctx context.Context, id primitive.ObjectID, userID string) (int64, error) {
	s.Lock()
	defer s.Unlock()

	r, ok := s.reviews[id]
	if !ok || r.UserID != userID {
		return 0, nil
	}
	delete(s.reviews, id)
	return 1, nil
}

// SetCounters stores the vote counts on the targeted review
func (s ReviewStore) SetCounters(ctx context.Context, target models.ReviewTarget, likes int64, dislikes int64) error {
	s.Lock()
	defer s.Unlock()

	r, ok := s.findBySubject(target.UserID, target.Type, target.SubjectID())
	if !ok {
		return nil
	}
	r.Likes = likes
	r.Dislikes = dislikes
	s.reviews[r.ID] = r
	return nil
}

// Import upserts reviews by author, type and subject
func (s ReviewStore) Import(ctx context.Context, reviews []models.Review) (int64, error) {
	s.Lock()
	defer s.Unlock()

	var n int64
	for i := range reviews {
		r := reviews[i]
		r.Normalize()

		if old, ok := s.findBySubject(r.UserID, r.Type, r.SubjectID); ok {
			r.ID = old.ID
			r.Likes = old.Likes
			r.Dislikes = old.Dislikes
			r.Timestamp = old.Timestamp
		} else {
			r.ID = primitive.NewObjectID()
			r.Likes = 0
			r.Dislikes = 0
			if r.Timestamp.IsZero() {
				r.Timestamp = time.Now()
			}
		}
		s.reviews[r.ID] = r
		n++
	}
	return n, nil
}

// Len returns the number of reviews
func (s ReviewStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.reviews)
}

// ---------------------------------------------------------------- interactions

// InteractionStore is the in memory version of models.InteractionModel
type InteractionStore struct{ *DB }

// Interactions returns the interaction store
func (db *DB) Interactions() InteractionStore { return InteractionStore{db} }

func sameTarget(i models.Interaction, target models.ReviewTarget) bool {
	return i.UserID == target.UserID && i.Type == target.Type && i.SubjectID == target.SubjectID()
}

// Upsert saves the vote of the referrer
func (s InteractionStore) Upsert(ctx context.Context, interaction *models.Interaction) error {
	s.Lock()
	defer s.Unlock()

	target := interaction.Target()
	interaction.SubjectID = target.SubjectID()
	interaction.InteractedAt = time.Now()

	for k, i := range s.interactions {
		if i.Referrer == interaction.Referrer && sameTarget(i, target) {
			interaction.ID = i.ID
			s.interactions[k] = *interaction
			return nil
		}
	}

	interaction.ID = primitive.NewObjectID()
	s.interactions = append(s.interactions, *interaction)
	return nil
}

func (s InteractionStore) remove(keep func(models.Interaction) bool) int64 {
	var n int64
	rest := s.interactions[:0]
	for _, i := range s.interactions {
		if keep(i) {
			rest = append(rest, i)
		} else {
			n++
		}
	}
	s.interactions = rest
	return n
}

// Delete removes the vote of a referrer
func (s InteractionStore) Delete(ctx context.Context, referrer string, target models.ReviewTarget) (int64, error) {
	s.Lock()
	defer s.Unlock()

	return s.remove(func(i models.Interaction) bool {
		return !(i.Referrer == referrer && sameTarget(i, target))
	}), nil
}

// Kind returns the vote of the referrer, empty if none
func (s InteractionStore) Kind(ctx context.Context, referrer string, target models.ReviewTarget) (lookups.InteractionKind, error) {
	s.RLock()
	defer s.RUnlock()

	for _, i := range s.interactions {
		if i.Referrer == referrer && sameTarget(i, target) {
			return i.Kind, nil
		}
	}
	return "", nil
}

// ListByReferrer returns the votes of a user
func (s InteractionStore) ListByReferrer(ctx context.Context, referrer string, rt lookups.ReviewType, subjectID string) ([]models.Interaction, error) {
	s.RLock()
	defer s.RUnlock()

	res := []models.Interaction{}
	for _, i := range s.interactions {
		if i.Referrer != referrer {
			continue
		}
		if rt != "" && i.Type != rt {
			continue
		}
		if subjectID != "" && i.SubjectID != subjectID {
			continue
		}
		res = append(res, i)
	}
	return res, nil
}

// DeleteForReview removes all votes on a review
func (s InteractionStore) DeleteForReview(ctx context.Context, target models.ReviewTarget) (int64, error) {
	s.Lock()
	defer s.Unlock()

	return s.remove(func(i models.Interaction) bool {
		return !sameTarget(i, target)
	}), nil
}

// Count returns likes and dislikes of a review
func (s InteractionStore) Count(ctx context.Context, target models.ReviewTarget) (int64, int64, error) {
	s.RLock()
	defer s.RUnlock()

	var likes, dislikes int64
	for _, i := range s.interactions {
		if !sameTarget(i, target) {
			continue
		}
		switch i.Kind {
		case lookups.KindLike:
			likes++
		case lookups.KindDislike:
			dislikes++
		}
	}
	return likes, dislikes, nil
}

// Len returns the number of interactions
func (s InteractionStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.interactions)
}

// ---------------------------------------------------------------- notifications

// NotificationStore is the in memory version of models.NotificationModel
type NotificationStore struct{ *DB }

// Notifications returns the notification store
func (db *DB) Notifications() NotificationStore { return NotificationStore{db} }

// InsertMany stores notifications
func (s NotificationStore) InsertMany(ctx context.Context, notifications []models.Notification) error {
	s.Lock()
	defer s.Unlock()

	for i := range notifications {
		if notifications[i].ID.IsZero() {
			notifications[i].ID = primitive.NewObjectID()
		}
		s.notifications[notifications[i].ID] = notifications[i]
	}
	return nil
}

// UpdateReview refreshes the snapshots of a review
func (s NotificationStore) UpdateReview(ctx context.Context, creator string, courseID string, review models.NotificationReview) (int64, error) {
	s.Lock()
	defer s.Unlock()

	var n int64
	for id, x := range s.notifications {
		if x.Review.UserID == creator && x.Review.CourseID == courseID && x.Review.ID == review.ID {
			x.Review = review
			s.notifications[id] = x
			n++
		}
	}
	return n, nil
}

// Remove deletes notifications like models.RemovalFilter selects them
func (s NotificationStore) Remove(ctx context.Context, creator string, recipient *string, courseID string, mode models.Wildcard) (int64, error) {
	s.Lock()
	defer s.Unlock()

	var n int64
	for id, x := range s.notifications {
		if x.Review.UserID != creator || x.Review.CourseID != courseID {
			continue
		}
		switch {
		case recipient != nil:
			if x.RecipientID != *recipient {
				continue
			}
		case mode == models.WildcardStrict:
			if x.RecipientID != "" {
				continue
			}
		}
		delete(s.notifications, id)
		n++
	}
	return n, nil
}

// ListByRecipient returns the notifications of a user, newest first
func (s NotificationStore) ListByRecipient(ctx context.Context, recipient string) ([]models.Notification, error) {
	s.RLock()
	defer s.RUnlock()

	res := []models.Notification{}
	for _, x := range s.notifications {
		if x.RecipientID == recipient {
			res = append(res, x)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID.Hex() < res[j].ID.Hex()
	})
	return res, nil
}

// SetSeen marks a notification of the recipient
func (s NotificationStore) SetSeen(ctx context.Context, id primitive.ObjectID, recipient string, seen bool) error {
	s.Lock()
	defer s.Unlock()

	x, ok := s.notifications[id]
	if !ok || x.RecipientID != recipient {
		return apperror.ErrNoData
	}
	x.Seen = seen
	s.notifications[id] = x
	return nil
}

// Delete removes a notification of the recipient
func (s NotificationStore) Delete(ctx context.Context, id primitive.ObjectID, recipient string) error {
	s.Lock()
	defer s.Unlock()

	x, ok := s.notifications[id]
	if !ok || x.RecipientID != recipient {
		return apperror.ErrNoData
	}
	delete(s.notifications, id)
	return nil
}

// ---------------------------------------------------------------- subscriptions

// SubscriptionStore is the in memory version of models.SubscriptionModel
type SubscriptionStore struct{ *DB }

// Subscriptions returns the subscription store
func (db *DB) Subscriptions() SubscriptionStore { return SubscriptionStore{db} }

// Add subscribes a user, twice is fine
func (s SubscriptionStore) Add(ctx context.Context, userID string, courseID string) error {
	s.Lock()
	defer s.Unlock()

	for _, x := range s.subscriptions {
		if x.UserID == userID && x.CourseID == courseID {
			return nil
		}
	}
	s.subscriptions = append(s.subscriptions, models.Subscription{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now(),
	})
	return nil
}

// Remove unsubscribes a user
func (s SubscriptionStore) Remove(ctx context.Context, userID string, courseID string) (int64, error) {
	s.Lock()
	defer s.Unlock()

	for k, x := range s.subscriptions {
		if x.UserID == userID && x.CourseID == courseID {
			s.subscriptions = append(s.subscriptions[:k], s.subscriptions[k+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// ListByUser returns the subscriptions of a user ordered by course
func (s SubscriptionStore) ListByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	s.RLock()
	defer s.RUnlock()

	res := []models.Subscription{}
	for _, x := range s.subscriptions {
		if x.UserID == userID {
			res = append(res, x)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CourseID < res[j].CourseID })
	return res, nil
}

// Subscribers returns the users subscribed to a course
func (s SubscriptionStore) Subscribers(ctx context.Context, courseID string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	ids := []string{}
	for _, x := range s.subscriptions {
		if x.CourseID == courseID {
			ids = append(ids, x.UserID)
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------- users

// UserStore is the in memory version of models.UserModel
type UserStore struct{ *DB }

// Users returns the user store
func (db *DB) Users() UserStore { return UserStore{db} }

// Exists checks if a user name is taken
func (s UserStore) Exists(ctx context.Context, username string) (bool, error) {
	s.RLock()
	defer s.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// Create adds a user
func (s UserStore) Create(ctx context.Context, user *models.User) (string, error) {
	s.Lock()
	defer s.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return "", apperror.ErrUserNameTaken
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return user.ID.Hex(), nil
}

// GetByName reads a user
func (s UserStore) GetByName(ctx context.Context, username string) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.ErrNoData
}

// GetByID reads a user
func (s UserStore) GetByID(ctx context.Context, ID string) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()

	u, ok := s.users[helpers.ObjectID(ID)]
	if !ok {
		return nil, apperror.ErrNoData
	}
	return &u, nil
}

// SetVerified marks the account verified
func (s UserStore) SetVerified(ctx context.Context, ID string) error {
	s.Lock()
	defer s.Unlock()

	id := helpers.ObjectID(ID)
	u, ok := s.users[id]
	if !ok {
		return apperror.ErrNoData
	}
	u.Verified = true
	s.users[id] = u
	return nil
}

// ---------------------------------------------------------------- tokens

// TokenStore is the in memory version of models.TokenModel
type TokenStore struct{ *DB }

// Tokens returns the token store
func (db *DB) Tokens() TokenStore { return TokenStore{db} }

// Create stores a token
func (s TokenStore) Create(ctx context.Context, token *models.VerificationToken) error {
	s.Lock()
	defer s.Unlock()

	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	s.tokens[token.ID] = *token
	return nil
}

// Find looks up a token by value
func (s TokenStore) Find(ctx context.Context, token string) (*models.VerificationToken, error) {
	s.RLock()
	defer s.RUnlock()

	for _, vt := range s.tokens {
		if vt.Token == token {
			return &vt, nil
		}
	}
	return nil, apperror.ErrNoData
}

// Delete consumes a token
func (s TokenStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.Lock()
	defer s.Unlock()

	delete(s.tokens, id)
	return nil
}

// ForUser returns the tokens issued to a user
func (s TokenStore) ForUser(userID string) []models.VerificationToken {
	s.RLock()
	defer s.RUnlock()

	res := []models.VerificationToken{}
	for _, vt := range s.tokens {
		if vt.UserID == userID {
			res = append(res, vt)
		}
	}
	return res
}

// ---------------------------------------------------------------- stats

// StatsStore is the in memory version of models.SubjectModel
type StatsStore struct{ *DB }

// Stats returns the stats store
func (db *DB) Stats() StatsStore { return StatsStore{db} }

func statsKey(rt lookups.ReviewType, subjectID string) string {
	return string(rt) + ":" + subjectID
}

// Recalculate aggregates the reviews of a subject
func (s StatsStore) Recalculate(ctx context.Context, rt lookups.ReviewType, subjectID string) (*models.SubjectStats, error) {
	s.Lock()
	defer s.Unlock()

	var rating, difficulty float64
	var n int64
	for _, r := range s.reviews {
		if r.Type == rt && r.SubjectID == subjectID {
			rating += float64(r.Rating)
			difficulty += float64(r.Difficulty)
			n++
		}
	}

	stats := models.SubjectStats{ID: subjectID, ReviewCount: n, TouchedAt: time.Now()}
	if n > 0 {
		stats.AvgRating = math.Round(rating/float64(n)*100) / 100
		stats.AvgDifficulty = math.Round(difficulty/float64(n)*100) / 100
	}
	s.stats[statsKey(rt, subjectID)] = stats

	return &stats, nil
}

// Get reads the stats of a subject
func (s StatsStore) Get(ctx context.Context, rt lookups.ReviewType, subjectID string) (*models.SubjectStats, error) {
	s.RLock()
	defer s.RUnlock()

	stats, ok := s.stats[statsKey(rt, subjectID)]
	if !ok {
		return nil, apperror.ErrNoData
	}
	return &stats, nil
}
