package models

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VerificationToken is emailed to a new user; it's single use and expires
type VerificationToken struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Token     string             `json:"token" bson:"token"`
	UserID    string             `json:"-" bson:"userId"`
	ExpiresAt time.Time          `json:"-" bson:"expiresAt"`
}

// Expired reports whether the token can no longer be used at t
func (vt *VerificationToken) Expired(t time.Time) bool {
	return !t.Before(vt.ExpiresAt)
}

// TokenModel provides the logics to the data type
type TokenModel struct {
	Collection *mongo.Collection
}

// Create stores a new token
func (m TokenModel) Create(ctx context.Context, token *VerificationToken) error {

	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.InsertOne(ctx, token)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}

// Find looks up a token by its value
func (m TokenModel) Find(ctx context.Context, token string) (*VerificationToken, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var vt VerificationToken
	err := m.Collection.FindOne(ctx, bson.D{{Key: "token", Value: token}}).Decode(&vt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &vt, nil
}

// Delete consumes a token
func (m TokenModel) Delete(ctx context.Context, id primitive.ObjectID) error {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}

	return nil
}
