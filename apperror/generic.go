package apperror

// Error is a constant error type, so the values below can be compared with errors.Is
// even after being wrapped by helpers.WrapError
type Error string

func (e Error) Error() string { return string(e) }

// generic
const (
	ErrNoData         = Error("no records found")
	ErrUnauthorized   = Error("unauthorized")
	ErrInvalidRequest = Error("invalid request")
)

// user & session
const (
	ErrInvalidLogin    = Error("invalid user name or password")
	ErrUserNameTaken   = Error("user name is not available")
	ErrEMailDomain     = Error("email must be a concordia email address")
	ErrInvalidToken    = Error("unknown verification token")
	ErrTokenExpired    = Error("verification token expired")
	ErrAlreadyVerified = Error("user is already verified")
	ErrResendThrottled = Error("verification token requested too often")
	ErrSessionNotFound = Error("session not registered")
)

// review & interaction
const (
	ErrInvalidReviewType      = Error("review type must be course or instructor")
	ErrSubjectMissing         = Error("review subject is required")
	ErrInvalidInteractionKind = Error("interaction kind must be like or dislike")
	ErrInvalidTag             = Error("unknown instructor tag")
)
