package controllers

import (
	"concordia-courses/apperror"
	"concordia-courses/authentication"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// HandleError encodes the std ErrorResponse
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	if err == nil {
		return 0, apiError
	}

	switch {
	// session
	case errors.Is(err, apperror.ErrUnauthorized),
		errors.Is(err, apperror.ErrSessionNotFound),
		errors.Is(err, authentication.ErrNotLoggedIn):
		apiError.Code = Unauthorized
		httpStatus = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrInvalidLogin):
		apiError.Code = InvalidLogin
		httpStatus = http.StatusUnauthorized
	// user
	case errors.Is(err, apperror.ErrUserNameTaken):
		apiError.Code = UserNameTaken
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrEMailDomain):
		apiError.Code = EMailDomain
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidToken):
		apiError.Code = WrongToken
		httpStatus = http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrTokenExpired):
		apiError.Code = TokenExpired
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrAlreadyVerified):
		apiError.Code = AlreadyVerified
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrResendThrottled):
		apiError.Code = ResendThrottled
		httpStatus = http.StatusTooManyRequests
	// review & interaction
	case errors.Is(err, apperror.ErrInvalidReviewType):
		apiError.Code = InvalidReviewType
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidInteractionKind):
		apiError.Code = InvalidKind
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidTag):
		apiError.Code = InvalidTag
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrSubjectMissing):
		apiError.Code = SubjectMissing
		httpStatus = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidRequest):
		apiError.Code = InvalidRequest
		httpStatus = http.StatusBadRequest
	// generic
	case errors.Is(err, apperror.ErrNoData):
		apiError.Code = NotFound
		httpStatus = http.StatusNotFound
	default:
		logrus.Error(err)
		apiError.Code = SystemError
		httpStatus = http.StatusInternalServerError
	}

	apiError.Message = apiError.String(apiError.Code)
	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	Unauthorized
	NotFound
	// user
	UserNameTaken
	EMailDomain
	WrongToken
	TokenExpired
	AlreadyVerified
	ResendThrottled
	// review
	InvalidReviewType
	InvalidKind
	InvalidTag
	SubjectMissing
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid user name or password"
	case Unauthorized:
		msg = "No token found."
	case NotFound:
		msg = "Not found"
	// user
	case UserNameTaken:
		msg = "Username is already taken"
	case EMailDomain:
		msg = "Email must be a Concordia email address"
	case WrongToken:
		msg = "Oops! Wrong token. Let's retry with the correct one."
	case TokenExpired:
		msg = "Whoops! Looks like this token has expired. Time to grab a fresh one!"
	case AlreadyVerified:
		msg = "You're already verified"
	case ResendThrottled:
		msg = "Hold on! A new code was sent a moment ago."
	// review
	case InvalidReviewType:
		msg = "review type must be course or instructor"
	case InvalidKind:
		msg = "interaction kind must be like or dislike"
	case InvalidTag:
		msg = "unknown instructor tag"
	case SubjectMissing:
		msg = "course or instructor is required"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}

// abortWithError writes the ErrorResponse of err
func abortWithError(c *gin.Context, err error) {
	status, apiError := HandleError(err)
	c.AbortWithStatusJSON(status, apiError)
}

// invalidJSON answers requests whose body could not be bound;
// rejected enum values (review type, kind, tag) keep their own code
func invalidJSON(c *gin.Context, err error) {
	logrus.WithField("path", c.FullPath()).Debug(err)

	var appErr apperror.Error
	if errors.As(err, &appErr) {
		abortWithError(c, err)
		return
	}

	var apiError ErrorResponse
	apiError.Code = InvalidJSON
	apiError.Message = apiError.String(apiError.Code)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, apiError)
}

// Deny is used by the session middleware for requests without a valid session
func Deny(c *gin.Context, err error) {
	abortWithError(c, err)
}
