package services

import (
	"concordia-courses/apperror"
	"concordia-courses/models"
	"concordia-courses/storetest"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", "alice@concordia.ca", "alice", mock.AnythingOfType("string")).Return(nil)
	s := newAuthService(db, m)

	user, err := s.Signup(context.Background(), Credentials{Username: "alice", Email: "alice@concordia.ca", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "pw", user.Password)

	tokens := db.Tokens().ForUser(user.ID.Hex())
	require.Len(t, tokens, 1)
	m.AssertCalled(t, "SendVerification", "alice@concordia.ca", "alice", tokens[0].Token)
}

func TestSignupDomain(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newAuthService(db, m)
	ctx := context.Background()

	_, err := s.Signup(ctx, Credentials{Username: "bob", Email: "bob@gmail.com", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrEMailDomain)

	_, err = s.Signup(ctx, Credentials{Username: "bob", Email: "Bob@Live.Concordia.CA", Password: "pw"})
	assert.NoError(t, err)

	// a taken name is reported whatever the email is
	_, err = s.Signup(ctx, Credentials{Username: "bob", Email: "bob@gmail.com", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrUserNameTaken)
}

func TestSignupMailFailureKeepsAccount(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	s := newAuthService(db, m)

	_, err := s.Signup(context.Background(), Credentials{Username: "alice", Email: "alice@concordia.ca", Password: "pw"})
	require.NoError(t, err)

	exists, err := db.Users().Exists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSignin(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newAuthService(db, m)
	ctx := context.Background()

	name := faker.Username()
	pw := faker.Password()
	_, err := s.Signup(ctx, Credentials{Username: name, Email: name + "@concordia.ca", Password: pw})
	require.NoError(t, err)

	user, err := s.Signin(ctx, Credentials{Username: name, Password: pw})
	require.NoError(t, err)
	assert.Equal(t, name, user.Username)

	_, err = s.Signin(ctx, Credentials{Username: name, Password: pw + "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidLogin)

	_, err = s.Signin(ctx, Credentials{Username: name + "x", Password: pw})
	assert.ErrorIs(t, err, apperror.ErrInvalidLogin)
}

func TestConfirm(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newAuthService(db, m)
	ctx := context.Background()

	user, err := s.Signup(ctx, Credentials{Username: "alice", Email: "alice@concordia.ca", Password: "pw"})
	require.NoError(t, err)
	token := db.Tokens().ForUser(user.ID.Hex())[0].Token

	assert.ErrorIs(t, s.Confirm(ctx, "wrong"), apperror.ErrInvalidToken)
	require.NoError(t, s.Confirm(ctx, token))

	current, err := s.CurrentUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.True(t, current.Verified)
	assert.Equal(t, "alice", current.Username)

	// consumed
	assert.ErrorIs(t, s.Confirm(ctx, token), apperror.ErrInvalidToken)
}

func TestConfirmExpired(t *testing.T) {
	db := storetest.New()
	s := newAuthService(db, &mockMailer{})
	ctx := context.Background()

	user := &models.User{Username: "alice", Email: "alice@concordia.ca"}
	_, err := db.Users().Create(ctx, user)
	require.NoError(t, err)
	require.NoError(t, db.Tokens().Create(ctx, &models.VerificationToken{
		Token:     "old",
		UserID:    user.ID.Hex(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	assert.ErrorIs(t, s.Confirm(ctx, "old"), apperror.ErrTokenExpired)
	// removed, so the second try fails as unknown
	assert.ErrorIs(t, s.Confirm(ctx, "old"), apperror.ErrInvalidToken)

	current, err := s.CurrentUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.False(t, current.Verified)
}

func TestResend(t *testing.T) {
	db := storetest.New()
	m := &mockMailer{}
	m.On("SendVerification", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newAuthService(db, m)
	ctx := context.Background()

	user, err := s.Signup(ctx, Credentials{Username: "alice", Email: "alice@concordia.ca", Password: "pw"})
	require.NoError(t, err)
	id := user.ID.Hex()

	require.NoError(t, s.Resend(ctx, id))
	// older tokens stay valid
	assert.Len(t, db.Tokens().ForUser(id), 2)

	assert.ErrorIs(t, s.Resend(ctx, id), apperror.ErrResendThrottled)
	m.AssertNumberOfCalls(t, "SendVerification", 2)

	require.NoError(t, s.Confirm(ctx, db.Tokens().ForUser(id)[0].Token))
	assert.ErrorIs(t, s.Resend(ctx, id), apperror.ErrAlreadyVerified)
}

func TestCurrentUserUnknown(t *testing.T) {
	s := newAuthService(storetest.New(), &mockMailer{})

	_, err := s.CurrentUser(context.Background(), "64b7f1f2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, apperror.ErrNoData)
}
