package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"techsupport/internal/errs"
	"techsupport/internal/middleware"
	"techsupport/internal/service"
)

// bootstrapPending reports whether the first-admin flow is still open. On a
// store error it answers the error and returns ok=false.
func (h *Handler) bootstrapPending(c *gin.Context, view string) (pending, ok bool) {
	has, err := h.identity.HasAnyLogin(c.Request.Context())
	if err != nil {
		h.renderError(c, view, err, nil)
		return false, false
	}
	return !has, true
}

func (h *Handler) ShowLogin(c *gin.Context) {
	pending, ok := h.bootstrapPending(c, "login")
	if !ok {
		return
	}
	if pending {
		c.Redirect(http.StatusFound, "/create_first_admin")
		return
	}
	h.render(c, http.StatusOK, "login", nil)
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, "login", errs.Validation("", "invalid form data"), nil)
		return
	}

	login, err := h.identity.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errs.IsAuthentication(err) {
			h.log.Info("login failed", "username", form.Username, "client_ip", c.ClientIP())
		}
		h.renderError(c, "login", err, gin.H{"username": form.Username})
		return
	}

	if err := middleware.SignIn(c, login); err != nil {
		h.renderError(c, "login", err, nil)
		return
	}
	h.log.Info("technician signed in", "login_id", login.ID, "username", login.Username)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	if err := middleware.SignOut(c); err != nil {
		h.log.Warn("session clear failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) ShowCreateFirstAdmin(c *gin.Context) {
	pending, ok := h.bootstrapPending(c, "create_first_admin")
	if !ok {
		return
	}
	if !pending {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.render(c, http.StatusOK, "create_first_admin", nil)
}

func (h *Handler) CreateFirstAdmin(c *gin.Context) {
	pending, ok := h.bootstrapPending(c, "create_first_admin")
	if !ok {
		return
	}
	if !pending {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form service.BootstrapFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, "create_first_admin", errs.Validation("", "invalid form data"), nil)
		return
	}
	login, err := h.identity.BootstrapAdmin(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyBootstrapped) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.renderError(c, "create_first_admin", err, gin.H{
			"full_name": form.FullName,
			"email":     form.Email,
			"username":  form.Username,
		})
		return
	}

	h.recordAs(c.Request.Context(), login.ID, "technician_login", login.ID, "bootstrap", "first administrator "+login.Username)
	if err := middleware.SignIn(c, login); err != nil {
		h.renderError(c, "create_first_admin", err, nil)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) ShowCreateAccount(c *gin.Context) {
	h.render(c, http.StatusOK, "create_account", nil)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var form service.LoginFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, "create_account", errs.Validation("", "invalid form data"), nil)
		return
	}

	login, err := h.identity.RegisterLogin(c.Request.Context(), form)
	if err != nil {
		h.renderError(c, "create_account", err, gin.H{"email": form.Email, "username": form.Username})
		return
	}

	h.recordAs(c.Request.Context(), login.ID, "technician_login", login.ID, "create", "account "+login.Username)
	middleware.AddFlash(c, "Account created, please sign in.")
	c.Redirect(http.StatusFound, "/login")
}
