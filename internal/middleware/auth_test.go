package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techsupport/internal/errs"
	"techsupport/internal/logger"
	"techsupport/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLogins struct {
	has    bool
	err    error
	logins map[uint]*models.TechnicianLogin
}

func newFakeLogins(has bool) *fakeLogins {
	return &fakeLogins{has: has, logins: map[uint]*models.TechnicianLogin{}}
}

func (f *fakeLogins) HasAnyLogin(context.Context) (bool, error) { return f.has, f.err }

func (f *fakeLogins) GetLogin(_ context.Context, id uint) (*models.TechnicianLogin, error) {
	if f.err != nil {
		return nil, f.err
	}
	login, ok := f.logins[id]
	if !ok {
		return nil, errs.NotFound("login %d not found", id)
	}
	return login, nil
}

func TestAuthorize(t *testing.T) {
	tech := &CurrentUser{LoginID: 1, Role: models.TechRoleTechnician}
	admin := &CurrentUser{LoginID: 2, Role: models.TechRoleAdmin}

	tests := []struct {
		name     string
		user     *CurrentUser
		required models.TechRole
		logins   *fakeLogins
		want     Access
	}{
		{"anonymous before bootstrap", nil, models.TechRoleTechnician, newFakeLogins(false), NeedsBootstrap},
		{"anonymous after bootstrap", nil, models.TechRoleTechnician, newFakeLogins(true), NeedsLogin},
		{"technician on technician route", tech, models.TechRoleTechnician, newFakeLogins(true), Allowed},
		{"technician on admin route", tech, models.TechRoleAdmin, newFakeLogins(true), Forbidden},
		{"admin on admin route", admin, models.TechRoleAdmin, newFakeLogins(true), Allowed},
		{"admin on technician route", admin, models.TechRoleTechnician, newFakeLogins(true), Allowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Authorize(context.Background(), tt.user, tt.required, tt.logins)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, got.String())
		})
	}

	_, err := Authorize(context.Background(), nil, models.TechRoleTechnician, &fakeLogins{err: errors.New("db down")})
	assert.Error(t, err)
}

// newEngine builds a router with a /signin helper that registers login 7
// with the given role and signs it in, a technician route and an admin route.
func newEngine(logins *fakeLogins) *gin.Engine {
	log := logger.Discard()
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(InjectUser(logins, log))

	r.GET("/signin/:role", func(c *gin.Context) {
		login := &models.TechnicianLogin{ID: 7, Username: "tech", Role: models.TechRole(c.Param("role"))}
		logins.logins[login.ID] = login
		if err := SignIn(c, login); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/", RequireTechnician(logins, log), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Current(c), "flashes": Flashes(c)})
	})
	r.GET("/admin", RequireAdmin(logins, log), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return r
}

func do(r http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRedirectsAnonymous(t *testing.T) {
	w := do(newEngine(newFakeLogins(false)), "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create_first_admin", w.Header().Get("Location"))

	w = do(newEngine(newFakeLogins(true)), "/admin", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireAdminFlashesTechnician(t *testing.T) {
	r := newEngine(newFakeLogins(true))

	signin := do(r, "/signin/Technician", nil)
	require.Equal(t, http.StatusNoContent, signin.Code)
	cookies := signin.Result().Cookies()

	w := do(r, "/admin", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	home := do(r, "/", w.Result().Cookies())
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "administrator access is required")
	assert.Contains(t, home.Body.String(), `"login_id":7`)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	r := newEngine(newFakeLogins(true))
	signin := do(r, "/signin/Admin", nil)

	w := do(r, "/admin", signin.Result().Cookies())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRequireFailsClosedOnCheckerError(t *testing.T) {
	w := do(newEngine(&fakeLogins{err: errors.New("db down")}), "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestInjectUserReadsRoleFromStore(t *testing.T) {
	logins := newFakeLogins(true)
	r := newEngine(logins)

	signin := do(r, "/signin/Admin", nil)
	require.Equal(t, http.StatusNoContent, signin.Code)
	cookies := signin.Result().Cookies()
	require.Equal(t, http.StatusOK, do(r, "/admin", cookies).Code)

	logins.logins[7].Role = models.TechRoleTechnician

	w := do(r, "/admin", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestInjectUserClearsRevokedLogin(t *testing.T) {
	logins := newFakeLogins(true)
	r := newEngine(logins)

	signin := do(r, "/signin/Technician", nil)
	cookies := signin.Result().Cookies()
	require.Equal(t, http.StatusOK, do(r, "/", cookies).Code)

	delete(logins.logins, 7)

	w := do(r, "/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// the cleared session stays anonymous even if the id is reused later
	logins.logins[7] = &models.TechnicianLogin{ID: 7, Username: "other", Role: models.TechRoleAdmin}
	w = do(r, "/admin", w.Result().Cookies())
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestInjectUserFailsClosedOnStoreError(t *testing.T) {
	logins := newFakeLogins(true)
	r := newEngine(logins)
	cookies := do(r, "/signin/Admin", nil).Result().Cookies()

	logins.err = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, do(r, "/", cookies).Code)
}
