package models

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User is an account; it stays unverified until the emailed token was confirmed
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // hash value
	Verified  bool               `json:"isVerified" bson:"verified"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// UserModel provides the logic to the interface and access to the database
type UserModel struct {
	Collection *mongo.Collection
}

// Exists checks if a user name is already taken
func (m UserModel) Exists(ctx context.Context, username string) (bool, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	// there seems to be no function like "exists" so a limited count is used
	cnt, err := m.Collection.CountDocuments(ctx, bson.D{{Key: "username", Value: username}}, options.Count().SetLimit(1))
	if err != nil {
		return false, helpers.WrapError(err, helpers.FuncName())
	}

	return cnt > 0, nil
}

// Create adds a new user; the password must already be hashed
func (m UserModel) Create(ctx context.Context, user *User) (string, error) {

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()

	ctx, cancel := dbContext(ctx)
	defer cancel()

	_, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		if helpers.IsDuplicateKey(err) {
			return "", apperror.ErrUserNameTaken
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	return user.ID.Hex(), nil
}

// GetByName reads a user's account data
func (m UserModel) GetByName(ctx context.Context, username string) (*User, error) {
	return m.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

// GetByID reads a user's account data
func (m UserModel) GetByID(ctx context.Context, ID string) (*User, error) {

	// https://ildar.pro/golang-hints-create-mongodb-object-id-from-string/
	id, err := primitive.ObjectIDFromHex(ID)
	if err != nil {
		return nil, apperror.ErrNoData
	}

	return m.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (m UserModel) findOne(ctx context.Context, filter bson.D) (*User, error) {

	ctx, cancel := dbContext(ctx)
	defer cancel()

	var user User
	err := m.Collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.ErrNoData
		}
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	return &user, nil
}

// SetVerified completes the signup of a user
func (m UserModel) SetVerified(ctx context.Context, ID string) error {

	filter := bson.D{{Key: "_id", Value: helpers.ObjectID(ID)}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "verified", Value: true}}}}

	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNoData
	}

	return nil
}
