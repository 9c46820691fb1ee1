package models

import (
	"concordia-courses/helpers"
	"concordia-courses/lookups"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Interaction is a like or dislike of a review. The review is identified by its
// denormalized key (type, courseId, instructorId, userId = author); referrer is the voter.
// There is at most one interaction per referrer and review.
type Interaction struct {
	ID           primitive.ObjectID      `json:"id" bson:"_id,omitempty"`
	Kind         lookups.InteractionKind `json:"kind" bson:"kind" binding:"required"`
	Type         lookups.ReviewType      `json:"type" bson:"type" binding:"required"`
	CourseID     string                  `json:"courseId" bson:"courseId"`
	InstructorID string                  `json:"instructorId" bson:"instructorId"`
	SubjectID    string                  `json:"-" bson:"subjectId"`
	UserID       string                  `json:"userId" bson:"userId" binding:"required"`
	Referrer     string                  `json:"referrer" bson:"referrer"`
	InteractedAt time.Time               `json:"interactedAt" bson:"interactedAt"`
}

// Target returns the key of the review voted on
func (i *Interaction) Target() ReviewTarget {
	return ReviewTarget{
		Type:         i.Type,
		CourseID:     i.CourseID,
		InstructorID: i.InstructorID,
		UserID:       i.UserID,
	}
}

// InteractionCounts is the current state of votes on a review
type InteractionCounts struct {
	Likes    int64                   `json:"likes"`
	Dislikes int64                   `json:"dislikes"`
	Kind     lookups.InteractionKind `json:"kind,omitempty"` // vote of the requesting user
}

// InteractionModel provides the logics to the data type
type InteractionModel struct {
	Collection *mongo.Collection
}

func targetFilter(target ReviewTarget) bson.D {
	return bson.D{
		{Key: "userId", Value: target.UserID},
		{Key: "type", Value: target.Type},
		{Key: "subjectId", Value: target.SubjectID()},
	}
}

func referrerFilter(referrer string, target ReviewTarget) bson.D {
	return append(bson.D{{Key: "referrer", Value: referrer}}, targetFilter(target)...)
}

// Upsert saves the vote of the referrer; changing like/dislike replaces the kind
func (m InteractionModel) Upsert(ctx context.Context, interaction *Interaction) error {

	target := interaction.Target()
	interaction.SubjectID = target.SubjectID()
	interaction.InteractedAt = time.Now()

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "kind", Value: interaction.Kind},
			{Key: "courseId", Value: interaction.CourseID},
			{Key: "instructorId", Value: interaction.InstructorID},
			{Key: "interactedAt", Value: interaction.InteractedAt},
		}},
	}

	opts := options.Update().SetUpsert(true)

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.UpdateOne(ctx, referrerFilter(interaction.Referrer, target), update, opts)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Delete removes the vote of a referrer (returns count of deleted records)
func (m InteractionModel) Delete(ctx context.Context, referrer string, target ReviewTarget) (int64, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteOne(ctx, referrerFilter(referrer, target))
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.DeletedCount, nil
}

// Kind returns the vote of the referrer, empty if there is none
func (m InteractionModel) Kind(ctx context.Context, referrer string, target ReviewTarget) (lookups.InteractionKind, error) {

	fields := bson.D{
		{Key: "_id", Value: 0}, // _id kommt immer, daher explizit ausschalten
		{Key: "kind", Value: 1},
	}

	data := struct {
		Kind lookups.InteractionKind `bson:"kind"`
	}{}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	err := m.Collection.FindOne(ctx, referrerFilter(referrer, target), options.FindOne().SetProjection(fields)).Decode(&data)
	if err != nil {
		// it's NOT an error if the user didn't vote
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return data.Kind, nil
}

// ListByReferrer returns the votes of a user, optionally restricted to a type and subject
func (m InteractionModel) ListByReferrer(ctx context.Context, referrer string, rt lookups.ReviewType, subjectID string) ([]Interaction, error) {

	filter := bson.D{{Key: "referrer", Value: referrer}}
	if rt != "" {
		filter = append(filter, bson.E{Key: "type", Value: rt})
	}
	if subjectID != "" {
		filter = append(filter, bson.E{Key: "subjectId", Value: subjectID})
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "interactedAt", Value: -1}}))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	interactions := []Interaction{}
	if err = cursor.All(ctx, &interactions); err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return interactions, nil
}

// DeleteForReview removes every vote on a review
func (m InteractionModel) DeleteForReview(ctx context.Context, target ReviewTarget) (int64, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.DeleteMany(ctx, targetFilter(target))
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	return res.DeletedCount, nil
}

// Count returns the likes and dislikes of a review
func (m InteractionModel) Count(ctx context.Context, target ReviewTarget) (likes int64, dislikes int64, err error) {

	matchStage := bson.D{{Key: "$match", Value: targetFilter(target)}}

	// https://stackoverflow.com/questions/23116330/mongodb-select-count-group-by
	groupStage := bson.D{
		{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$kind"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}},
	}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Collection.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage}, opts)
	if err != nil {
		return 0, 0, helpers.WrapError(err, helpers.FuncName())
	}

	var counts []struct {
		Kind  lookups.InteractionKind `bson:"_id"`
		Count int64                   `bson:"count"`
	}
	if err = cursor.All(ctx, &counts); err != nil {
		return 0, 0, helpers.WrapError(err, helpers.FuncName())
	}

	for _, v := range counts {
		switch v.Kind {
		case lookups.KindLike:
			likes = v.Count
		case lookups.KindDislike:
			dislikes = v.Count
		}
	}

	return likes, dislikes, nil
}
