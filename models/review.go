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

// Review is a user's opinion on a course or an instructor.
// There is at most one review per author, type and subject (unique index review_author_subject).
type Review struct {
	ID           primitive.ObjectID      `json:"id" bson:"_id,omitempty"`
	Type         lookups.ReviewType      `json:"type" bson:"type" validate:"required,oneof=course instructor"`
	CourseID     string                  `json:"courseId" bson:"courseId" validate:"required_if=Type course"`
	InstructorID string                  `json:"instructorId" bson:"instructorId" validate:"required_if=Type instructor"`
	SubjectID    string                  `json:"-" bson:"subjectId"` // courseId or instructorId, see SubjectID()
	UserID       string                  `json:"userId" bson:"userId" validate:"required"`
	Content      string                  `json:"content" bson:"content"`
	Rating       int32                   `json:"rating" bson:"rating" validate:"gte=1,lte=5"`
	Difficulty   int32                   `json:"difficulty" bson:"difficulty" validate:"gte=1,lte=5"`
	Tags         []lookups.InstructorTag `json:"tags" bson:"tags"`
	Likes        int64                   `json:"likes" bson:"likes"`
	Dislikes     int64                   `json:"dislikes" bson:"dislikes"`
	Timestamp    time.Time               `json:"timestamp" bson:"timestamp"`
	UpdatedAt    time.Time               `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// ReviewTarget identifies a review by its denormalized key (as sent by the client)
type ReviewTarget struct {
	Type         lookups.ReviewType `json:"type" bson:"type"`
	CourseID     string             `json:"courseId" bson:"courseId"`
	InstructorID string             `json:"instructorId" bson:"instructorId"`
	UserID       string             `json:"userId" bson:"userId"` // author of the review
}

// SubjectID of the targeted review
func (t ReviewTarget) SubjectID() string {
	return SubjectID(t.Type, t.CourseID, t.InstructorID)
}

// Target returns the denormalized key of the review
func (r *Review) Target() ReviewTarget {
	return ReviewTarget{
		Type:         r.Type,
		CourseID:     r.CourseID,
		InstructorID: r.InstructorID,
		UserID:       r.UserID,
	}
}

// Normalize sets the derived subject and drops tags on course reviews
func (r *Review) Normalize() {
	r.SubjectID = SubjectID(r.Type, r.CourseID, r.InstructorID)
	if r.Type == lookups.ReviewCourse {
		r.Tags = nil
	}
	if r.Tags == nil {
		r.Tags = []lookups.InstructorTag{}
	}
}

// ReviewFilter is the body of POST /reviews/filter; every field is optional
type ReviewFilter struct {
	Type         lookups.ReviewType      `json:"type,omitempty"`
	CourseID     string                  `json:"courseId,omitempty"`
	InstructorID string                  `json:"instructorId,omitempty"`
	UserID       string                  `json:"userId,omitempty"`
	Tags         []lookups.InstructorTag `json:"tags,omitempty"`
	SortBy       string                  `json:"sortBy,omitempty"` // recent, rating, likes
}

// sort orders of the filter
const (
	SortRecent = "recent"
	SortRating = "rating"
	SortLikes  = "likes"
)

// ReviewModel provides the logic to the interface and access to the database
type ReviewModel struct {
	Collection *mongo.Collection
}

// BuildFilter translates the filter criteria into a query document
func BuildFilter(f ReviewFilter) bson.D {
	filter := bson.D{}

	if f.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: f.Type})
	}
	if f.CourseID != "" {
		filter = append(filter, bson.E{Key: "courseId", Value: f.CourseID})
	}
	if f.InstructorID != "" {
		filter = append(filter, bson.E{Key: "instructorId", Value: f.InstructorID})
	}
	if f.UserID != "" {
		filter = append(filter, bson.E{Key: "userId", Value: f.UserID})
	}
	if len(f.Tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$all", Value: f.Tags}}})
	}

	return filter
}

// BuildSort returns the ordering of a filter; _id is always the last key so pages never overlap
func BuildSort(sortBy string) bson.D {
	var sort bson.D

	switch sortBy {
	case SortRecent:
		sort = bson.D{{Key: "timestamp", Value: -1}}
	case SortRating:
		sort = bson.D{{Key: "rating", Value: -1}}
	case SortLikes:
		sort = bson.D{{Key: "likes", Value: -1}}
	}

	return append(sort, bson.E{Key: "_id", Value: 1})
}

func subjectFilter(userID string, rt lookups.ReviewType, subjectID string) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "type", Value: rt},
		{Key: "subjectId", Value: subjectID},
	}
}

// FindBySubject returns the review of an author on a subject
func (m ReviewModel) FindBySubject(ctx context.Context, userID string, rt lookups.ReviewType, subjectID string) (*Review, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var review Review
	err := m.Collection.FindOne(ctx, subjectFilter(userID, rt, subjectID)).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &review, nil
}

// Insert adds a new review; the caller checks for duplicates with helpers.IsDuplicateKey
func (m ReviewModel) Insert(ctx context.Context, review *Review) error {

	review.Normalize()
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.InsertOne(ctx, review)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// ReplaceContent overwrites what the author may change and keeps identity, timestamp and counters
func (m ReviewModel) ReplaceContent(ctx context.Context, id primitive.ObjectID, review *Review) (*Review, error) {

	review.Normalize()

	fields := bson.D{
		{Key: "content", Value: review.Content},
		{Key: "rating", Value: review.Rating},
		{Key: "difficulty", Value: review.Difficulty},
		{Key: "tags", Value: review.Tags},
		{Key: "updatedAt", Value: time.Now()},
	}
	// instructor reviews may name another course the author took with this instructor
	if review.Type == lookups.ReviewInstructor {
		fields = append(fields, bson.E{Key: "courseId", Value: review.CourseID})
	}

	update := bson.D{{Key: "$set", Value: fields}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var res Review
	err := m.Collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&res)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &res, nil
}

// Get reads a single review
func (m ReviewModel) Get(ctx context.Context, id primitive.ObjectID) (*Review, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var review Review
	err := m.Collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &review, nil
}

// ListByUser returns all reviews of an author, newest first
func (m ReviewModel) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return m.find(ctx, bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(BuildSort(SortRecent)))
}

// Filter returns a page of reviews matching the criteria
func (m ReviewModel) Filter(ctx context.Context, limit int64, offset int64, f ReviewFilter) ([]Review, error) {

	limit, offset = ClampPage(limit, offset)

	opts := options.Find().
		SetSort(BuildSort(f.SortBy)).
		SetSkip(offset).
		SetLimit(limit)

	return m.find(ctx, BuildFilter(f), opts)
}

func (m ReviewModel) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]Review, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// an empty list is not an error here
	reviews := []Review{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return reviews, nil
}

// Delete removes a review of an author (returns count of deleted records)
func (m ReviewModel) Delete(ctx context.Context, id primitive.ObjectID, userID string) (int64, error) {

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: userID},
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.DeletedCount, nil
}

// SetCounters stores the like/dislike counts on the targeted review
func (m ReviewModel) SetCounters(ctx context.Context, target ReviewTarget, likes int64, dislikes int64) error {

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "likes", Value: likes},
			{Key: "dislikes", Value: dislikes},
		}},
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	// the review may have been deleted in the meantime, that's fine
	_, err := m.Collection.UpdateOne(ctx, subjectFilter(target.UserID, target.Type, target.SubjectID()), update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Import upserts reviews in bulk (by author, type and subject); counters and timestamps of
// existing reviews are kept. Returns the number of inserted and modified reviews.
func (m ReviewModel) Import(ctx context.Context, reviews []Review) (int64, error) {

	if len(reviews) == 0 {
		return 0, nil
	}

	ops := make([]mongo.WriteModel, 0, len(reviews))
	for i := range reviews {
		r := reviews[i]
		r.Normalize()

		ts := r.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}

		update := bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "courseId", Value: r.CourseID},
				{Key: "instructorId", Value: r.InstructorID},
				{Key: "content", Value: r.Content},
				{Key: "rating", Value: r.Rating},
				{Key: "difficulty", Value: r.Difficulty},
				{Key: "tags", Value: r.Tags},
			}},
			{Key: "$setOnInsert", Value: bson.D{
				{Key: "likes", Value: int64(0)},
				{Key: "dislikes", Value: int64(0)},
				{Key: "timestamp", Value: ts},
			}},
		}

		op := mongo.NewUpdateOneModel().
			SetFilter(subjectFilter(r.UserID, r.Type, r.SubjectID)).
			SetUpdate(update).
			SetUpsert(true)
		ops = append(ops, op)
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.BulkWrite(ctx, ops, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.UpsertedCount + res.ModifiedCount, nil
}
