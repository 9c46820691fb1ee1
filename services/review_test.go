package services

import (
	"concordia-courses/analytics"
	"concordia-courses/apperror"
	"concordia-courses/lookups"
	"concordia-courses/models"
	"concordia-courses/storetest"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddOrUpdateKeepsOneReviewPerSubject(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	first, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)
	require.False(t, first.ID.IsZero())

	second := courseReview("alice", "COMP 248", 2)
	second.Content = "changed my mind"
	res, err := f.reviews.AddOrUpdate(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, 1, f.db.Reviews().Len())
	assert.Equal(t, first.ID, res.ID)
	assert.True(t, first.Timestamp.Equal(res.Timestamp))
	assert.Equal(t, "changed my mind", res.Content)
	assert.Equal(t, int32(2), res.Rating)
	assert.False(t, res.UpdatedAt.IsZero())

	f.tracker.AssertCalled(t, "SaveReviewEvent", analytics.ActionAdded, "COMP 248")
	f.tracker.AssertCalled(t, "SaveReviewEvent", analytics.ActionUpdated, "COMP 248")
}

func TestAddOrUpdateSeparatesTypes(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	_, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, instructorReview("alice", "jdoe", "COMP 248", "Caring"))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, courseReview("bob", "COMP 248", 5))
	require.NoError(t, err)

	assert.Equal(t, 3, f.db.Reviews().Len())
}

func TestAddOrUpdateKeepsCounters(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	_, err = f.interactions.Add(ctx, "bob", &models.Interaction{
		Kind: lookups.KindLike, Type: r.Type, CourseID: r.CourseID, UserID: "alice",
	})
	require.NoError(t, err)

	res, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Likes)
}

func TestAddOrUpdateValidates(t *testing.T) {
	f := newFixture(models.WildcardAny)

	r := courseReview("alice", "", 4)
	_, err := f.reviews.AddOrUpdate(context.Background(), r)
	assert.ErrorIs(t, err, apperror.ErrInvalidRequest)

	r = courseReview("alice", "COMP 248", 9)
	_, err = f.reviews.AddOrUpdate(context.Background(), r)
	assert.ErrorIs(t, err, apperror.ErrInvalidRequest)

	assert.Equal(t, 0, f.db.Reviews().Len())
}

func TestAddOrUpdateDropsTagsOnCourseReviews(t *testing.T) {
	f := newFixture(models.WildcardAny)

	r := courseReview("alice", "COMP 248", 4)
	r.Tags = []lookups.InstructorTag{"Caring"}
	res, err := f.reviews.AddOrUpdate(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, res.Tags)
}

func TestAddNotifiesSubscribers(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	require.NoError(t, f.notifications.Subscribe(ctx, "bob", "COMP 248"))
	require.NoError(t, f.notifications.Subscribe(ctx, "carol", "COMP 248"))
	require.NoError(t, f.notifications.Subscribe(ctx, "alice", "COMP 248"))
	require.NoError(t, f.notifications.Subscribe(ctx, "dave", "SOEN 287"))

	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	for _, user := range []string{"bob", "carol"} {
		list, err := f.notifications.List(ctx, user)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, r.ID, list[0].Review.ID)
		assert.False(t, list[0].Seen)
	}
	for _, user := range []string{"alice", "dave"} {
		list, err := f.notifications.List(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, list)
	}

	// editing refreshes the snapshot, no new notifications
	edit := courseReview("alice", "COMP 248", 1)
	edit.Content = "worse than I thought"
	_, err = f.reviews.AddOrUpdate(ctx, edit)
	require.NoError(t, err)

	list, err := f.notifications.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "worse than I thought", list[0].Review.Content)
	assert.Equal(t, int32(1), list[0].Review.Rating)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	require.NoError(t, f.notifications.Subscribe(ctx, "bob", "COMP 248"))
	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	_, err = f.interactions.Add(ctx, "bob", &models.Interaction{
		Kind: lookups.KindDislike, Type: r.Type, CourseID: r.CourseID, UserID: "alice",
	})
	require.NoError(t, err)

	err = f.reviews.Delete(ctx, "alice", DeletePayload{
		ID: r.ID.Hex(), Type: r.Type, CourseID: r.CourseID,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.db.Reviews().Len())
	assert.Equal(t, 0, f.db.Interactions().Len())
	list, err := f.notifications.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	stats, err := f.reviews.SubjectStats(ctx, lookups.ReviewCourse, "COMP 248")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ReviewCount)
	f.tracker.AssertCalled(t, "SaveReviewEvent", analytics.ActionDeleted, "COMP 248")
}

func TestDeleteOnlyOwnReview(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	// bob has no review there, the call is a no-op
	err = f.reviews.Delete(ctx, "bob", DeletePayload{ID: r.ID.Hex(), Type: r.Type, CourseID: r.CourseID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.db.Reviews().Len())
}

func TestDeleteMissingReview(t *testing.T) {
	f := newFixture(models.WildcardAny)

	err := f.reviews.Delete(context.Background(), "alice", DeletePayload{
		ID: "64b7f1f2a1b2c3d4e5f60718", Type: lookups.ReviewCourse, CourseID: "COMP 248",
	})
	assert.NoError(t, err)
	f.tracker.AssertNotCalled(t, "SaveReviewEvent", analytics.ActionDeleted, "COMP 248")
}

func TestDeleteWrongIDKeepsReviewIntact(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	require.NoError(t, f.notifications.Subscribe(ctx, "bob", "COMP 248"))
	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)
	_, err = f.interactions.Add(ctx, "bob", vote(lookups.KindLike, r))
	require.NoError(t, err)

	err = f.reviews.Delete(ctx, "alice", DeletePayload{
		ID: primitive.NewObjectID().Hex(), Type: r.Type, CourseID: r.CourseID,
	})
	require.NoError(t, err)

	// neither the votes nor the notifications of the real review are touched
	assert.Equal(t, 1, f.db.Reviews().Len())
	assert.Equal(t, 1, f.db.Interactions().Len())
	list, err := f.notifications.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stored, err := f.reviews.Get(ctx, r.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Likes)
}

func TestDeleteUsesStoredReview(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	comp, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)
	soen, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "SOEN 287", 3))
	require.NoError(t, err)
	_, err = f.interactions.Add(ctx, "bob", vote(lookups.KindLike, comp))
	require.NoError(t, err)
	_, err = f.interactions.Add(ctx, "carol", vote(lookups.KindLike, soen))
	require.NoError(t, err)

	// id of the COMP 248 review, subject of the other one
	err = f.reviews.Delete(ctx, "alice", DeletePayload{
		ID: comp.ID.Hex(), Type: lookups.ReviewInstructor, CourseID: "SOEN 287",
	})
	require.NoError(t, err)

	_, err = f.reviews.Get(ctx, comp.ID.Hex())
	assert.ErrorIs(t, err, apperror.ErrNoData)
	assert.Equal(t, 1, f.db.Interactions().Len())

	stored, err := f.reviews.Get(ctx, soen.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Likes)
	f.tracker.AssertCalled(t, "SaveReviewEvent", analytics.ActionDeleted, "COMP 248")
}

// insertRace misses the first lookup, as if another request inserted in between
type insertRace struct {
	storetest.ReviewStore
	raced bool
}

func (s *insertRace) FindBySubject(ctx context.Context, userID string, rt lookups.ReviewType, subjectID string) (*models.Review, error) {
	if !s.raced {
		return nil, apperror.ErrNoData
	}
	return s.ReviewStore.FindBySubject(ctx, userID, rt, subjectID)
}

func (s *insertRace) Insert(ctx context.Context, review *models.Review) error {
	s.raced = true
	return storetest.ErrDuplicateKey
}

func TestAddOrUpdateLostInsertReplaces(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	require.NoError(t, f.notifications.Subscribe(ctx, "bob", "COMP 248"))
	first, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	store := &insertRace{ReviewStore: f.db.Reviews()}
	svc := NewReviewService(store, f.interactions, f.notifications, f.db.Stats(), f.tracker)

	edit := courseReview("alice", "COMP 248", 2)
	edit.Content = "second thoughts"
	res, err := svc.AddOrUpdate(ctx, edit)
	require.NoError(t, err)

	assert.True(t, store.raced)
	assert.Equal(t, first.ID, res.ID)
	assert.Equal(t, "second thoughts", res.Content)
	assert.Equal(t, 1, f.db.Reviews().Len())

	// the replace path refreshed the notification instead of adding one
	list, err := f.notifications.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second thoughts", list[0].Review.Content)
	f.tracker.AssertCalled(t, "SaveReviewEvent", analytics.ActionUpdated, "COMP 248")
}

func TestFilterPagesDoNotOverlap(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		author := string(rune('a'+i)) + "-user"
		_, err := f.reviews.AddOrUpdate(ctx, courseReview(author, "COMP 248", int32(i%5)+1))
		require.NoError(t, err)
	}
	// noise
	_, err := f.reviews.AddOrUpdate(ctx, courseReview("zed", "SOEN 287", 5))
	require.NoError(t, err)

	for _, sortBy := range []string{"", models.SortRecent, models.SortRating, models.SortLikes} {
		filter := models.ReviewFilter{CourseID: "COMP 248", SortBy: sortBy}

		page1, err := f.reviews.Filter(ctx, 10, 0, filter)
		require.NoError(t, err)
		page2, err := f.reviews.Filter(ctx, 10, 10, filter)
		require.NoError(t, err)

		assert.Len(t, page1, 10)
		assert.Len(t, page2, 5)

		seen := map[string]bool{}
		for _, r := range append(page1, page2...) {
			assert.False(t, seen[r.ID.Hex()], "review listed twice (%s)", sortBy)
			seen[r.ID.Hex()] = true
		}
		assert.Len(t, seen, 15)
	}
}

func TestFilterByTags(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	_, err := f.reviews.AddOrUpdate(ctx, instructorReview("alice", "jdoe", "COMP 248", "Caring", "Hilarious"))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, instructorReview("bob", "jdoe", "COMP 248", "Caring"))
	require.NoError(t, err)

	res, err := f.reviews.Filter(ctx, 0, 0, models.ReviewFilter{
		Type: lookups.ReviewInstructor,
		Tags: []lookups.InstructorTag{"Caring", "Hilarious"},
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "alice", res[0].UserID)
}

func TestGetReview(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	r, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)

	res, err := f.reviews.Get(ctx, r.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, r.Content, res.Content)

	_, err = f.reviews.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperror.ErrNoData)
	_, err = f.reviews.Get(ctx, "64b7f1f2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, apperror.ErrNoData)
}

func TestStatsFollowReviews(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	_, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 4))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, courseReview("bob", "COMP 248", 5))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, courseReview("carol", "COMP 248", 5))
	require.NoError(t, err)

	stats, err := f.reviews.SubjectStats(ctx, lookups.ReviewCourse, "COMP 248")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ReviewCount)
	assert.Equal(t, 4.67, stats.AvgRating)
	assert.Equal(t, 3.0, stats.AvgDifficulty)
}

func TestImport(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	_, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 1))
	require.NoError(t, err)

	n, err := f.reviews.Import(ctx, []models.Review{
		*courseReview("alice", "COMP 248", 5),
		*courseReview("bob", "COMP 248", 5),
		*instructorReview("carol", "jdoe", "", "Caring"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3, f.db.Reviews().Len())

	stats, err := f.reviews.SubjectStats(ctx, lookups.ReviewCourse, "COMP 248")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ReviewCount)
	assert.Equal(t, 5.0, stats.AvgRating)

	stats, err = f.reviews.SubjectStats(ctx, lookups.ReviewInstructor, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ReviewCount)
}

func TestListByUser(t *testing.T) {
	f := newFixture(models.WildcardAny)
	ctx := context.Background()

	_, err := f.reviews.AddOrUpdate(ctx, courseReview("alice", "COMP 248", 1))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, courseReview("alice", "SOEN 287", 2))
	require.NoError(t, err)
	_, err = f.reviews.AddOrUpdate(ctx, courseReview("bob", "SOEN 287", 2))
	require.NoError(t, err)

	res, err := f.reviews.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = f.reviews.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, res)
}
