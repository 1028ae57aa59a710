package middleware

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"techsupport/internal/errs"
	"techsupport/internal/models"
)

// Session keys.
const (
	SessionLoginID  = "login_id"
	SessionUsername = "username"
	SessionRole     = "role"
)

const currentUserKey = "current_user"

// flash notices are kept in the session as []any
func init() {
	gob.Register([]any{})
}

// CurrentUser is the signed-in technician, loaded from the store by InjectUser.
type CurrentUser struct {
	LoginID  uint            `json:"login_id"`
	Username string          `json:"username"`
	Role     models.TechRole `json:"role"`
}

func (u *CurrentUser) IsAdmin() bool {
	return u != nil && u.Role == models.TechRoleAdmin
}

// SignIn stores login in the session.
func SignIn(c *gin.Context, login *models.TechnicianLogin) error {
	sess := sessions.Default(c)
	sess.Set(SessionLoginID, login.ID)
	sess.Set(SessionUsername, login.Username)
	sess.Set(SessionRole, string(login.Role))
	return sess.Save()
}

func SignOut(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}

func sessionLoginID(sess sessions.Session) uint {
	id, _ := sess.Get(SessionLoginID).(uint)
	return id
}

// InjectUser reloads the session's login from the store and puts it into the
// gin context. A session whose login no longer exists is cleared and the
// request continues as anonymous. The role always comes from the stored row.
func InjectUser(logins LoginChecker, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id := sessionLoginID(sess)
		if id == 0 {
			c.Next()
			return
		}

		login, err := logins.GetLogin(c.Request.Context(), id)
		switch {
		case errs.IsNotFound(err):
			log.Info("session login revoked", "login_id", id)
			sess.Clear()
			if err := sess.Save(); err != nil {
				log.Warn("session clear failed", "error", err)
			}
		case err != nil:
			log.Error("load session login failed", "login_id", id, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		default:
			c.Set(currentUserKey, &CurrentUser{LoginID: login.ID, Username: login.Username, Role: login.Role})
		}
		c.Next()
	}
}

// Current returns the user injected by InjectUser, or nil for anonymous
// requests.
func Current(c *gin.Context) *CurrentUser {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*CurrentUser)
	return u
}

// AddFlash queues a one-shot notice shown on the next rendered view.
func AddFlash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg)
	_ = sess.Save()
}

// Flashes drains the queued notices.
func Flashes(c *gin.Context) []string {
	sess := sessions.Default(c)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save()
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
