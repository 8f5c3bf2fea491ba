package auth

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/securecookie"

	"sincelast/internal/errs"
)

// CookieName is the session cookie issued on login.
const CookieName = "__session"

const sessionMaxAge = 30 * 24 * time.Hour

// SessionCodec signs and verifies the opaque user identifier carried by
// the session cookie. Signed only, not encrypted: the id is opaque but
// not secret, and tampering is what the gate must detect.
type SessionCodec struct {
	sc *securecookie.SecureCookie
}

func NewSessionCodec(secret string) *SessionCodec {
	sc := securecookie.New([]byte(secret), nil)
	sc.MaxAge(int(sessionMaxAge.Seconds()))
	return &SessionCodec{sc: sc}
}

func (c *SessionCodec) Encode(userID uint64) (string, error) {
	value, err := c.sc.Encode(CookieName, strconv.FormatUint(userID, 10))
	if err != nil {
		return "", errs.Wrap(err, "encode session")
	}
	return value, nil
}

// Decode returns the user id carried by a cookie value. Any tamper,
// expiry, or format problem makes the session invalid.
func (c *SessionCodec) Decode(value string) (uint64, error) {
	var raw string
	if err := c.sc.Decode(CookieName, value, &raw); err != nil {
		return 0, errs.Wrap(err, "decode session")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errs.Wrap(err, "parse session user id")
	}
	return id, nil
}

// Cookie wraps an encoded session value in the cookie the gate issues.
func (c *SessionCodec) Cookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie unconditionally.
func (c *SessionCodec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
