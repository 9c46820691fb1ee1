package authentication

import (
	"concordia-courses/apperror"
	"concordia-courses/helpers"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCookie = "session"
	testSecret = "access-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRegistry(t *testing.T) (*Registry, redismock.ClientMock) {
	t.Setenv("JWTCK_HASHKEY", "0123456789abcdef0123456789abcdef")
	db, mock := redismock.NewClientMock()
	return NewRegistry(db, testSecret, testCookie), mock
}

// requestWithToken builds a request carrying the sealed session cookie
func requestWithToken(t *testing.T, token string) *http.Request {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, helpers.SetCookie(c, testCookie, map[string]string{AT: token}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestCreateTokenClaims(t *testing.T) {
	reg, _ := newTestRegistry(t)

	td, err := reg.CreateToken("u1", "alice")
	require.NoError(t, err)
	assert.Contains(t, td.AccessUUID, "at_")
	assert.InDelta(t, time.Now().Add(30*time.Minute).Unix(), td.AtExpires, 5)

	ad, err := reg.ExtractTokenMetadata(requestWithToken(t, td.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, td.AccessUUID, ad.TokenUUID)
	assert.Equal(t, "u1", ad.UserID)
	assert.Equal(t, "alice", ad.UserName)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	reg, _ := newTestRegistry(t)
	other := NewRegistry(nil, "another-secret", testCookie)

	td, err := other.CreateToken("u1", "alice")
	require.NoError(t, err)

	_, err = reg.VerifyToken(td.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestExtractTokenWithoutCookie(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.ExtractToken(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCreateAuthRegistersWithTTL(t *testing.T) {
	reg, mock := newTestRegistry(t)

	td, err := reg.CreateToken("u1", "alice")
	require.NoError(t, err)

	mock.ExpectSet(td.AccessUUID, "u1", 1800*time.Second).SetVal("OK")
	require.NoError(t, reg.CreateAuth(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u1", td))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	reg, mock := newTestRegistry(t)

	td, err := reg.CreateToken("u1", "alice")
	require.NoError(t, err)

	mock.ExpectGet(td.AccessUUID).SetVal("u1")
	userID, err := reg.Authenticate(requestWithToken(t, td.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	// after sign-out the registration is gone
	mock.ExpectGet(td.AccessUUID).RedisNil()
	_, err = reg.Authenticate(requestWithToken(t, td.AccessToken))
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignoutDeletesRegistration(t *testing.T) {
	reg, mock := newTestRegistry(t)

	td, err := reg.CreateToken("u1", "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = requestWithToken(t, td.AccessToken)

	mock.ExpectDel(td.AccessUUID).SetVal(1)
	require.NoError(t, reg.Signout(c))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestTokenAuthMiddleware(t *testing.T) {
	reg, mock := newTestRegistry(t)

	denied := func(c *gin.Context, err error) {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
	}

	router := gin.New()
	router.GET("/me", reg.TokenAuthMiddleware(denied), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	// no cookie
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// registered session
	td, err := reg.CreateToken("u42", "bob")
	require.NoError(t, err)
	mock.ExpectGet(td.AccessUUID).SetVal("u42")

	req := requestWithToken(t, td.AccessToken)
	req.URL.Path = "/me"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u42", w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
