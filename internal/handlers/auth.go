package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"hospital-portal/internal/config"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/models"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/utils"
)

// AuthHandler handles sign-in, sign-up and sign-out.
type AuthHandler struct {
	Sessions *session.Manager
	Stores   *store.Registry
	Cookie   config.SessionConfig
	now      func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, stores *store.Registry, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Stores: stores, Cookie: cookie, now: time.Now}
}

// LoginResponse tells the browser who signed in and where to go.
type LoginResponse struct {
	User     models.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// SessionResponse describes the caller's session, if any.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	Home          string       `json:"home,omitempty"`
	ExpiresAt     *time.Time   `json:"expiresAt,omitempty"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds session.Credentials
	if !utils.BindAndValidate(c, &creds) {
		return
	}

	sess, err := h.Sessions.Login(c.Request.Context(), creds)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setCookie(c, sess.ID, h.cookieMaxAge(sess))
	utils.Success(c, "Login successful", LoginResponse{
		User:     sess.User,
		Redirect: landingPage(c.Query("redirect"), sess.User.Role),
	})
}

// Register handles the multipart sign-up form.
func (h *AuthHandler) Register(c *gin.Context) {
	var reg session.Registration
	if err := c.ShouldBindWith(&reg, binding.Form); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var err error
	if reg.ProfileImage, err = formFile(c, "profileImage"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if reg.DiplomaImage, err = formFile(c, "diplomaImage"); err != nil {
		utils.RespondError(c, err)
		return
	}

	pending, err := h.Sessions.Register(c.Request.Context(), reg)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	msg := "Registration successful"
	if pending {
		msg = "Registration successful. Your account is awaiting admin approval."
	}
	utils.Created(c, msg, gin.H{"pending": pending, "redirect": middleware.LoginPath})
}

// Logout forgets the session and its cached state.
func (h *AuthHandler) Logout(c *gin.Context) {
	id, _ := c.Cookie(h.Cookie.CookieName)
	if err := h.Sessions.Logout(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	if id != "" {
		h.Stores.Drop(id)
	}
	h.setCookie(c, "", -1)
	utils.Success(c, "Logged out", gin.H{"redirect": middleware.LoginPath})
}

// Session reports whether the caller is signed in.
func (h *AuthHandler) Session(c *gin.Context) {
	id, _ := c.Cookie(h.Cookie.CookieName)
	sess, err := h.Sessions.Check(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		if id != "" {
			h.Stores.Drop(id)
			h.setCookie(c, "", -1)
		}
		utils.Success(c, "No active session", SessionResponse{})
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp := SessionResponse{
		Authenticated: true,
		User:          &sess.User,
		Home:          sess.User.Role.HomePath(),
	}
	if exp, err := sess.ExpiresAt(); err == nil && !exp.IsZero() {
		resp.ExpiresAt = &exp
	}
	utils.Success(c, "Session active", resp)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.CookieName, value, maxAge, "/", "", h.Cookie.CookieSecure, true)
}

// cookieMaxAge follows the token expiry, falling back to the configured cap.
func (h *AuthHandler) cookieMaxAge(sess *session.Session) int {
	maxAge := h.Cookie.MaxAge
	if exp, err := sess.ExpiresAt(); err == nil && !exp.IsZero() {
		maxAge = exp.Sub(h.now())
	}
	if maxAge < time.Second {
		maxAge = time.Second
	}
	return int(maxAge / time.Second)
}

// Browsers read a backslash as a slash, so "/\host" counts as off-site.
// Browsers read a backslash as a slash, so "/\\host" counts as off-site.
func landingPage(target string, role models.Role) string {
	if isLocalPath(target) && !strings.HasPrefix(target, middleware.LoginPath) {
		return target
	}
	return role.HomePath()
}

func isLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == "" && u.User == nil
}
