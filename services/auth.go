package services

import (
	"concordia-courses/apperror"
	"concordia-courses/client"
	"concordia-courses/helpers"
	"concordia-courses/mailer"
	"concordia-courses/models"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twinj/uuid"
)

// defaults
const (
	DefaultTokenTTL    = 15 * time.Minute
	DefaultEmailDomain = "concordia.ca"
)

// Credentials is the body of signup and signin
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// CurrentUser is what the client gets to know about its session
type CurrentUser struct {
	Username string `json:"username"`
	Verified bool   `json:"isVerified"`
}

// AuthService handles accounts and their email verification;
// sessions are opened by the caller (authentication.Registry)
type AuthService struct {
	Users       UserStore
	Tokens      TokenStore
	Mailer      mailer.Mailer
	Throttle    *client.Registry
	TokenTTL    time.Duration
	EmailDomain string
	now         func() time.Time
}

// NewAuthService wires the service
func NewAuthService(users UserStore, tokens TokenStore, m mailer.Mailer, throttle *client.Registry, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		Users:       users,
		Tokens:      tokens,
		Mailer:      m,
		Throttle:    throttle,
		TokenTTL:    tokenTTL,
		EmailDomain: DefaultEmailDomain,
		now:         time.Now,
	}
}

func (s *AuthService) validDomain(email string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), s.EmailDomain)
}

// Signup creates an unverified account and mails the verification token
func (s *AuthService) Signup(ctx context.Context, cred Credentials) (*models.User, error) {

	exists, err := s.Users.Exists(ctx, cred.Username)
	if err != nil {
		return nil, err
	}
	// a taken name wins over a wrong domain
	if exists {
		return nil, apperror.ErrUserNameTaken
	}
	if !s.validDomain(cred.Email) {
		return nil, apperror.ErrEMailDomain
	}

	hash, err := helpers.GenerateHash(cred.Password)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	user := &models.User{
		Username: cred.Username,
		Email:    strings.TrimSpace(cred.Email),
		Password: hash,
	}
	if _, err = s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err = s.issueToken(ctx, user); err != nil {
		// the account exists, a new token can be requested
		logrus.WithField("user", user.ID.Hex()).Error(err)
	}

	return user, nil
}

// Signin checks the password
func (s *AuthService) Signin(ctx context.Context, cred Credentials) (*models.User, error) {

	user, err := s.Users.GetByName(ctx, cred.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNoData) {
			return nil, apperror.ErrInvalidLogin
		}
		return nil, err
	}

	if !helpers.CompareHash(user.Password, cred.Password) {
		return nil, apperror.ErrInvalidLogin
	}

	return user, nil
}

// Confirm verifies the account the token was issued for; the token is consumed.
// Expired tokens are removed as well.
func (s *AuthService) Confirm(ctx context.Context, token string) error {

	vt, err := s.Tokens.Find(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNoData) {
			return apperror.ErrInvalidToken
		}
		return err
	}

	if vt.Expired(s.now()) {
		if err = s.Tokens.Delete(ctx, vt.ID); err != nil {
			return err
		}
		return apperror.ErrTokenExpired
	}

	if err = s.Users.SetVerified(ctx, vt.UserID); err != nil {
		return err
	}

	return s.Tokens.Delete(ctx, vt.ID)
}

// Resend mails a fresh token; older tokens stay valid until they expire
func (s *AuthService) Resend(ctx context.Context, userID string) error {

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Verified {
		return apperror.ErrAlreadyVerified
	}

	if s.Throttle != nil && !s.Throttle.Continue(userID+":resend") {
		return apperror.ErrResendThrottled
	}

	return s.issueToken(ctx, user)
}

// CurrentUser returns the public part of a user's account
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*CurrentUser, error) {

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CurrentUser{Username: user.Username, Verified: user.Verified}, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) error {

	vt := &models.VerificationToken{
		Token:     uuid.NewV4().String(),
		UserID:    user.ID.Hex(),
		ExpiresAt: s.now().Add(s.TokenTTL),
	}
	if err := s.Tokens.Create(ctx, vt); err != nil {
		return err
	}

	return s.Mailer.SendVerification(ctx, user.Email, user.Username, vt.Token)
}
