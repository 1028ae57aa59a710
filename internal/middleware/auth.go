package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"techsupport/internal/models"
)

// Access is the outcome of checking a request against a required role.
type Access int

const (
	Allowed Access = iota
	NeedsLogin
	NeedsBootstrap
	Forbidden
)

func (a Access) String() string {
	switch a {
	case Allowed:
		return "allowed"
	case NeedsLogin:
		return "needs_login"
	case NeedsBootstrap:
		return "needs_bootstrap"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// LoginChecker reads technician logins for the session and access guards.
// GetLogin returns an errs not-found error for an unknown id.
type LoginChecker interface {
	HasAnyLogin(ctx context.Context) (bool, error)
	GetLogin(ctx context.Context, id uint) (*models.TechnicianLogin, error)
}

// ForbiddenNotice is flashed when a technician opens an admin page.
const ForbiddenNotice = "Forbidden: administrator access is required for that page."

// Authorize decides whether user may act with the required role. Anonymous
// users are sent to the bootstrap flow until the first login exists.
func Authorize(ctx context.Context, user *CurrentUser, required models.TechRole, logins LoginChecker) (Access, error) {
	if user == nil {
		has, err := logins.HasAnyLogin(ctx)
		if err != nil {
			return NeedsLogin, err
		}
		if !has {
			return NeedsBootstrap, nil
		}
		return NeedsLogin, nil
	}
	if required == models.TechRoleAdmin && !user.IsAdmin() {
		return Forbidden, nil
	}
	return Allowed, nil
}

// Require guards a route group with the given role. It relies on InjectUser
// having loaded the signed-in login.
func Require(required models.TechRole, logins LoginChecker, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := Current(c)
		access, err := Authorize(c.Request.Context(), user, required, logins)
		if err != nil {
			log.Error("authorization check failed", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		switch access {
		case Allowed:
			c.Next()
			return
		case NeedsBootstrap:
			c.Redirect(http.StatusFound, "/create_first_admin")
		case NeedsLogin:
			c.Redirect(http.StatusFound, "/login")
		case Forbidden:
			log.Warn("admin route refused", "path", c.Request.URL.Path, "login_id", user.LoginID)
			AddFlash(c, ForbiddenNotice)
			c.Redirect(http.StatusFound, "/")
		}
		c.Abort()
	}
}

func RequireTechnician(logins LoginChecker, log *slog.Logger) gin.HandlerFunc {
	return Require(models.TechRoleTechnician, logins, log)
}

func RequireAdmin(logins LoginChecker, log *slog.Logger) gin.HandlerFunc {
	return Require(models.TechRoleAdmin, logins, log)
}
