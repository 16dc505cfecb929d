// routes/auth.go
package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/auth"
	"github.com/sidhant-sriv/gallery-api/middleware"
)

// AuthRoutes sets up /login and /logout.
func AuthRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/login", h.LoginPage())
	router.POST("/login", h.Login())
	router.GET("/logout", h.Logout())
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.page("Log in", "login")
		p.Failed = c.Query("failed") != ""
		c.HTML(http.StatusOK, "login.tmpl", p)
	}
}

// Login checks the submitted credentials and starts a session.
func (h *Handlers) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		token, err := h.Auth.Login(username, password)
		if err != nil {
			h.clearSession(c)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				h.Log.Info("failed login", zap.String("ip", c.ClientIP()))
				c.Redirect(http.StatusSeeOther, "/login?failed=1")
				return
			}
			h.Log.Error("login error", zap.Error(err))
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(middleware.SessionCookie, token, int(h.Auth.TTL().Seconds()), "/", "", h.SecureCookies, true)
		h.Log.Info("operator logged in", zap.String("ip", c.ClientIP()))
		c.Redirect(http.StatusSeeOther, "/dashboard")
	}
}

// Logout drops the session cookie.
func (h *Handlers) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.clearSession(c)
		c.Redirect(http.StatusFound, "/login")
	}
}

func (h *Handlers) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.SecureCookies, true)
}
