package authentication

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/twinj/uuid"
)

// AT is the cookie key of the access token
const AT = "access_token"

// UserKey is the gin context key holding the authenticated user's id
const UserKey = "user_id"

// ErrNotLoggedIn is returned when no (valid) token was sent
var ErrNotLoggedIn = errors.New("requires authorization")

// TokenDetails holds a signed access token and its registration data
type TokenDetails struct {
	AccessToken string
	AccessUUID  string
	AtExpires   int64
}

// AccessDetails Token Metadata für die Registry (Key/Value redis)
type AccessDetails struct {
	TokenUUID string
	UserID    string
	UserName  string
}

// Registry issues session tokens and keeps track of them in redis.
// A token is only accepted while its access_uuid is registered, so a sign-out is immediate.
type Registry struct {
	client     *redis.Client
	secret     []byte
	cookieName string
	ttl        time.Duration
}

// NewRegistry creates a session registry; secret signs the JWTs (HS256)
func NewRegistry(client *redis.Client, secret string, cookieName string) *Registry {
	return &Registry{
		client:     client,
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        helpers.SessionMaxAge * time.Second,
	}
}

// Close releases the redis connection
func (r *Registry) Close() error {
	return r.client.Close()
}

// CreateTokens creates an access token, registers it in redis and sends it via cookie
func (r *Registry) CreateTokens(c *gin.Context, userID string, userName string) error {

	td, err := r.CreateToken(userID, userName)
	if err != nil {
		return err
	}

	err = r.CreateAuth(c.Request.Context(), userID, td)
	if err != nil {
		return err
	}

	tokens := map[string]string{
		AT: td.AccessToken,
	}

	// server-side cookie, javascript can't read it
	return helpers.SetCookie(c, r.cookieName, tokens)
}

// CreateToken signs a new access token
func (r *Registry) CreateToken(userID string, userName string) (*TokenDetails, error) {

	var err error
	td := &TokenDetails{}

	td.AtExpires = time.Now().Add(r.ttl).Unix()
	td.AccessUUID = "at_" + uuid.NewV4().String()

	atClaims := jwt.MapClaims{}
	atClaims["authorized"] = true
	atClaims["access_uuid"] = td.AccessUUID
	atClaims["user_id"] = userID // userID rather than username (login name)
	atClaims["username"] = userName
	atClaims["exp"] = td.AtExpires

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims)
	td.AccessToken, err = at.SignedString(r.secret)
	if err != nil {
		return nil, err
	}

	return td, nil
}

// CreateAuth registers the token (key: access_uuid, value: userID) with the session ttl
func (r *Registry) CreateAuth(ctx context.Context, userID string, td *TokenDetails) error {
	err := r.client.Set(ctx, td.AccessUUID, userID, r.ttl).Err()
	if err != nil {
		return helpers.WrapError(err, helpers.FuncName())
	}
	return nil
}

// ExtractToken returns the still encoded token from the cookie
func (r *Registry) ExtractToken(req *http.Request) (string, error) {

	cval, err := helpers.GetCookie(req, r.cookieName)
	if err != nil {
		return "", ErrNotLoggedIn
	}

	tokens := make(map[string]string)
	err = json.Unmarshal(cval, &tokens)
	if err != nil {
		return "", ErrNotLoggedIn
	}

	token, ok := tokens[AT]
	if !ok || token == "" {
		return "", ErrNotLoggedIn
	}

	return token, nil
}

// VerifyToken checks the signature and expiry
func (r *Registry) VerifyToken(tokenString string) (*jwt.Token, error) {

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		//Make sure the token method conforms to "SigningMethodHMAC"
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	return token, nil
}

// ExtractTokenMetadata reads the claims needed for the redis lookup
func (r *Registry) ExtractTokenMetadata(req *http.Request) (*AccessDetails, error) {

	tokenString, err := r.ExtractToken(req)
	if err != nil {
		return nil, err
	}

	token, err := r.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	accessUUID, ok := claims["access_uuid"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	userName, _ := claims["username"].(string)

	return &AccessDetails{
		TokenUUID: accessUUID,
		UserID:    userID,
		UserName:  userName,
	}, nil
}

// FetchAuth returns the userID registered for a token
func (r *Registry) FetchAuth(ctx context.Context, authD *AccessDetails) (string, error) {

	userID, err := r.client.Get(ctx, authD.TokenUUID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperror.ErrSessionNotFound
		}
		return "", helpers.WrapError(err, helpers.FuncName())
	}

	// registration was made for someone else
	if userID != authD.UserID {
		return "", apperror.ErrUnauthorized
	}

	return userID, nil
}

// Authenticate checks the session of a request and returns the UserID
func (r *Registry) Authenticate(req *http.Request) (string, error) {

	tokenAuth, err := r.ExtractTokenMetadata(req)
	if err != nil {
		return "", err
	}

	return r.FetchAuth(req.Context(), tokenAuth)
}

// DeleteAuth removes a token from the store upon log-out request
// (returns count of deleted records)
func (r *Registry) DeleteAuth(ctx context.Context, givenUUID string) (int64, error) {

	deleted, err := r.client.Del(ctx, givenUUID).Result()
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}
	return deleted, nil
}

// Signout unregisters the session of the request and clears the cookie
func (r *Registry) Signout(c *gin.Context) error {

	ad, err := r.ExtractTokenMetadata(c.Request)
	if err != nil {
		return err
	}

	_, err = r.DeleteAuth(c.Request.Context(), ad.TokenUUID)
	if err != nil {
		return err
	}

	return helpers.DelCookie(c, r.cookieName)
}

// ClearCookie removes the session cookie without touching the registry
func (r *Registry) ClearCookie(c *gin.Context) error {
	return helpers.DelCookie(c, r.cookieName)
}

// TokenAuthMiddleware lets only requests with a registered session pass.
// The user's id is put into the gin context (UserKey); deny writes the response otherwise.
func (r *Registry) TokenAuthMiddleware(deny func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := r.Authenticate(c.Request)
		if err != nil {
			deny(c, err)
			c.Abort()
			return
		}
		c.Set(UserKey, userID)
		c.Next()
	}
}

// UserID returns the id of the authenticated user (set by TokenAuthMiddleware)
func UserID(c *gin.Context) string {
	return c.GetString(UserKey)
}
