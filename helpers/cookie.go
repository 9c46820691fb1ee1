package helpers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/chmike/securecookie"
	"github.com/gin-gonic/gin"
)

// https://github.com/chmike/securecookie

// SessionMaxAge is the lifetime of the session cookie and of its registration (seconds)
const SessionMaxAge = 1800

var cookieParams = securecookie.Params{
	Path:     "/",              // cookie received only when URL starts with this path
	Domain:   "",               // cookie received only when URL domain matches this one
	MaxAge:   SessionMaxAge,    // cookie becomes invalid 30 minutes after it is set
	HTTPOnly: true,             // disallow access by remote javascript code
	Secure:   false,            // cookie received only with HTTPS, never with HTTP
	SameSite: securecookie.Lax, // cookie received with same or sub-domain names
}

func newCookie(name string, params securecookie.Params) (*securecookie.Obj, error) {
	return securecookie.New(name, []byte(os.Getenv("JWTCK_HASHKEY")), params)
}

// SetCookie seals value (json) into a cookie
func SetCookie(c *gin.Context, name string, value interface{}) error {

	sck, err := newCookie(name, cookieParams)
	if err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return sck.SetValue(c.Writer, b)
}

// GetCookie returns the unsealed (json) content of a cookie
func GetCookie(r *http.Request, name string) ([]byte, error) {

	sck, err := newCookie(name, cookieParams)
	if err != nil {
		return nil, err
	}

	val, err := sck.GetValue(nil, r)
	if err != nil {
		return nil, err
	}

	return val, nil
}

// DelCookie clears a cookie on the client
func DelCookie(c *gin.Context, name string) error {

	// set a new cookie with the same name and negative MaxAge to delete it
	cp := cookieParams
	cp.MaxAge = -1

	sck, err := newCookie(name, cp)
	if err != nil {
		return err
	}

	return sck.Delete(c.Writer)
}
