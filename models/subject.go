package models

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"concordia-courses/lookups"
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubjectStats summarizes the reviews of a course or an instructor
type SubjectStats struct {
	ID            string    `json:"id" bson:"_id"`
	AvgRating     float64   `json:"avgRating" bson:"avgRating"`
	AvgDifficulty float64   `json:"avgDifficulty" bson:"avgDifficulty"`
	ReviewCount   int64     `json:"reviewCount" bson:"reviewCount"`
	TouchedAt     time.Time `json:"touchedAt" bson:"touchedAt"`
}

// SubjectModel keeps the stats of courses and instructors
type SubjectModel struct {
	Reviews     *mongo.Collection
	Courses     *mongo.Collection
	Instructors *mongo.Collection
}

func (m SubjectModel) collection(rt lookups.ReviewType) *mongo.Collection {
	if rt == lookups.ReviewInstructor {
		return m.Instructors
	}
	return m.Courses
}

// round to 2 decimals
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Recalculate aggregates the reviews of a subject and stores the result
func (m SubjectModel) Recalculate(ctx context.Context, rt lookups.ReviewType, subjectID string) (*SubjectStats, error) {

	matchStage := bson.D{
		{Key: "$match", Value: bson.D{
			{Key: "type", Value: rt},
			{Key: "subjectId", Value: subjectID},
		}},
	}

	groupStage := bson.D{
		{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "avgDifficulty", Value: bson.D{{Key: "$avg", Value: "$difficulty"}}},
			{Key: "reviewCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}},
	}

	opts := options.Aggregate().SetMaxTime(5 * time.Second)

	ctx, cancel := dbContext(ctx)
	defer cancel()

	cursor, err := m.Reviews.Aggregate(ctx, mongo.Pipeline{matchStage, groupStage}, opts)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var res []struct {
		AvgRating     float64 `bson:"avgRating"`
		AvgDifficulty float64 `bson:"avgDifficulty"`
		ReviewCount   int64   `bson:"reviewCount"`
	}
	if err = cursor.All(ctx, &res); err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	// no reviews (left) means zeros
	stats := &SubjectStats{ID: subjectID, TouchedAt: time.Now()}
	if len(res) > 0 {
		stats.AvgRating = round2(res[0].AvgRating)
		stats.AvgDifficulty = round2(res[0].AvgDifficulty)
		stats.ReviewCount = res[0].ReviewCount
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "avgRating", Value: stats.AvgRating},
			{Key: "avgDifficulty", Value: stats.AvgDifficulty},
			{Key: "reviewCount", Value: stats.ReviewCount},
			{Key: "touchedAt", Value: stats.TouchedAt},
		}},
	}

	_, err = m.collection(rt).UpdateOne(ctx, bson.D{{Key: "_id", Value: subjectID}}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return stats, nil
}

// Get reads the stats of a subject
func (m SubjectModel) Get(ctx context.Context, rt lookups.ReviewType, subjectID string) (*SubjectStats, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var stats SubjectStats
	err := m.collection(rt).FindOne(ctx, bson.D{{Key: "_id", Value: subjectID}}).Decode(&stats)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &stats, nil
}
