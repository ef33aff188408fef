package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const DefaultCookieName = "token"

// CookieConfig controls the attributes of the session cookie
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewCookieConfig picks the cross-site attributes in production, where the
// client is served from another origin, and lax ones elsewhere
func NewCookieConfig(name, domain string, production bool) CookieConfig {
	if name == "" {
		name = DefaultCookieName
	}
	cfg := CookieConfig{
		Name:     name,
		Domain:   domain,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		cfg.Secure = true
		cfg.SameSite = http.SameSiteNoneMode
	}
	return cfg
}

// SetToken writes the token as an http-only session cookie
func (cc CookieConfig) SetToken(c *gin.Context, token string) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(cc.Name, token, 0, "/", cc.Domain, cc.Secure, true)
}

// Clear expires the session cookie
func (cc CookieConfig) Clear(c *gin.Context) {
	c.SetSameSite(cc.SameSite)
	c.SetCookie(cc.Name, "", -1, "/", cc.Domain, cc.Secure, true)
}

// Token reads the session cookie; a missing cookie yields ""
func (cc CookieConfig) Token(c *gin.Context) string {
	token, err := c.Cookie(cc.Name)
	if err != nil {
		return ""
	}
	return token
}
