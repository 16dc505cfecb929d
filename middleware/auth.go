// middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/auth"
)

const (
	SessionCookie = "session"
	sessionKey    = "session"
	loginPath     = "/login"
)

// SessionVerifier is the part of auth.Service the gate needs.
type SessionVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// RequireSession lets the request through only with a valid session cookie;
// everyone else is redirected to the login page.
func RequireSession(verifier SessionVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		sess, err := verifier.Verify(token)
		if err != nil {
			log.Debug("rejected session", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession retrieves the authenticated session from the Gin context
func GetSession(c *gin.Context) *auth.Session {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}
