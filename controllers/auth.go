// controllers/auth.go
package controllers

import (
	"net/http"

	"salonpos-backend/config"
	"salonpos-backend/services"
	"salonpos-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookiePolicy holds the session cookie attributes. In production cookies are cross-site
// and scoped to COOKIE_DOMAIN.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

func NewCookiePolicy(cfg *config.Config) CookiePolicy {
	if cfg.IsProduction() {
		return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode, Domain: cfg.Auth.CookieDomain}
	}
	return CookiePolicy{SameSite: http.SameSiteLaxMode}
}

func (p CookiePolicy) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(name, value, maxAge, "/", p.Domain, p.Secure, true)
}

type AuthController struct {
	auth    *services.AuthService
	cookies CookiePolicy
	logger  *zap.Logger
}

func NewAuthController(auth *services.AuthService, cookies CookiePolicy, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, cookies: cookies, logger: logger}
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshToken reads the token from the JSON body, falling back to the cookie.
func refreshToken(c *gin.Context) string {
	var in refreshInput
	if err := c.ShouldBindJSON(&in); err == nil && in.RefreshToken != "" {
		return in.RefreshToken
	}
	token, _ := c.Cookie(utils.RefreshCookieName)
	return token
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, ac.logger, err)
		return
	}

	tokens := ac.auth.Tokens()
	ac.cookies.set(c, utils.AccessCookieName, session.Token, int(tokens.AccessTTL().Seconds()))
	ac.cookies.set(c, utils.RefreshCookieName, session.RefreshToken, int(tokens.RefreshTTL().Seconds()))
	c.JSON(http.StatusOK, session)
}

func (ac *AuthController) Refresh(c *gin.Context) {
	token := refreshToken(c)
	if token == "" {
		utils.RespondWithError(c, http.StatusUnauthorized, "Refresh token required")
		return
	}

	session, err := ac.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, ac.logger, err)
		return
	}

	ac.cookies.set(c, utils.AccessCookieName, session.Token, int(ac.auth.Tokens().AccessTTL().Seconds()))
	c.JSON(http.StatusOK, session)
}

func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), refreshToken(c)); err != nil {
		respondServiceError(c, ac.logger, err)
		return
	}
	ac.cookies.set(c, utils.AccessCookieName, "", -1)
	ac.cookies.set(c, utils.RefreshCookieName, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	user, err := ac.auth.Me(c.Request.Context(), identity)
	if err != nil {
		respondServiceError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
