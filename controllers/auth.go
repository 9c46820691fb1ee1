package controllers

import (
	"concordia-courses/authentication"
	"concordia-courses/environment"
	"concordia-courses/services"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetUser returns name and verification state of the session's user
func GetUser(c *gin.Context) {

	user, err := environment.Env.Auth.CurrentUser(c.Request.Context(), authentication.UserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, user)
}

// Signin opens a session
func Signin(c *gin.Context) {

	var data services.Credentials

	// use 'shouldBind' so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}
	data.Username = strings.TrimSpace(data.Username)

	user, err := environment.Env.Auth.Signin(c.Request.Context(), data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// create, register & send the access token
	if err = environment.Env.Sessions.CreateTokens(c, user.ID.Hex(), user.Username); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Boom! You're in")
}

// Signout deletes the session in the registry and the cookie
func Signout(c *gin.Context) {

	if err := environment.Env.Sessions.Signout(c); err != nil {
		// the registration may have expired already, the cookie goes anyway
		logrus.WithField("user", authentication.UserID(c)).Debug(err)
		_ = environment.Env.Sessions.ClearCookie(c)
	}

	ok(c, "And you're out! Come back soon!")
}

// Signup registers a new (unverified) user and opens a session
func Signup(c *gin.Context) {

	var data services.Credentials

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}
	data.Username = strings.TrimSpace(data.Username)

	user, err := environment.Env.Auth.Signup(c.Request.Context(), data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err = environment.Env.Sessions.CreateTokens(c, user.ID.Hex(), user.Username); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Almost there! Just need to verify your email to make sure it's really you.")
}

// Authorized confirms the account with the emailed token
func Authorized(c *gin.Context) {

	data := struct {
		Token string `json:"token" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		invalidJSON(c, err)
		return
	}

	if err := environment.Env.Auth.Confirm(c.Request.Context(), strings.TrimSpace(data.Token)); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Welcome aboard! You've successfully joined the cool zone.")
}

// ResendToken mails a new verification token
func ResendToken(c *gin.Context) {

	if err := environment.Env.Auth.Resend(c.Request.Context(), authentication.UserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	ok(c, "Your new code is in your inbox!")
}
