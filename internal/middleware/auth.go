package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/models"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/utils"
)

const (
	sessionKey = "session"
	storeKey   = "store"
	userIDKey  = "userID"
	roleKey    = "userRole"
)

// LoginPath and UnauthorizedPath are the portal pages guards redirect to.
const (
	LoginPath        = "/auth/login"
	UnauthorizedPath = "/unauthorized"
)

// SessionChecker resolves a session id to a live session.
type SessionChecker interface {
	Check(ctx context.Context, id string) (*session.Session, error)
}

// StoreSource hands out the state container bound to a session.
type StoreSource interface {
	For(sess *session.Session) *store.Store
}

// SessionMiddleware requires a live session cookie and puts the session and
// its store into the context.
func SessionMiddleware(sessions SessionChecker, stores StoreSource, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)

		sess, err := sessions.Check(c.Request.Context(), id)
		if err != nil {
			msg := "Authentication required"
			switch {
			case errors.Is(err, session.ErrExpired):
				msg = "Session expired, please sign in again"
			case !errors.Is(err, session.ErrNotFound):
				utils.InternalServerError(c, "Failed to load session")
				c.Abort()
				return
			}
			utils.Redirect(c, http.StatusUnauthorized, msg, LoginRedirect(c.Request.URL.Path))
			return
		}

		c.Set(sessionKey, sess)
		c.Set(storeKey, stores.For(sess))
		c.Set(userIDKey, sess.User.ID)
		c.Set(roleKey, sess.User.Role)

		c.Next()
	}
}

// LoginRedirect is the login page location that returns to path afterwards.
func LoginRedirect(path string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(path)
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* SessionMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. SessionMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.Redirect(c, http.StatusForbidden, "You do not have permission to access this resource.", UnauthorizedPath)
	}
}

func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

func GetStore(c *gin.Context) (*store.Store, bool) {
	v, exists := c.Get(storeKey)
	if !exists {
		return nil, false
	}
	st, ok := v.(*store.Store)
	return st, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(roleKey)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
