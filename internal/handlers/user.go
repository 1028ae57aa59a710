package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techsupport/internal/errs"
	"techsupport/internal/models"
	"techsupport/internal/service"
)

var userRoles = []models.UserRole{models.UserRoleFaculty, models.UserRoleStaff, models.UserRoleOther}

func (h *Handler) ShowAddUser(c *gin.Context) {
	h.render(c, http.StatusOK, "add_user", gin.H{"roles": userRoles})
}

func (h *Handler) AddUser(c *gin.Context) {
	var form service.UserFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, "add_user", errs.Validation("", "invalid form data"), gin.H{"roles": userRoles})
		return
	}

	user, err := h.identity.CreateUser(c.Request.Context(), form)
	if err != nil {
		h.renderError(c, "add_user", err, gin.H{"roles": userRoles, "form": form})
		return
	}

	h.record(c, "user", user.ID, "create", "user "+user.Email)
	redirectf(c, "/user/%d", user.ID)
}

func (h *Handler) ShowUser(c *gin.Context) {
	id, ok := h.paramID(c, "user")
	if !ok {
		return
	}
	user, err := h.identity.GetUser(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "user", err, nil)
		return
	}
	h.render(c, http.StatusOK, "user", gin.H{"user": user})
}

func (h *Handler) ShowEditUser(c *gin.Context) {
	id, ok := h.paramID(c, "user")
	if !ok {
		return
	}
	user, err := h.identity.GetUser(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "edit_user", err, nil)
		return
	}
	h.render(c, http.StatusOK, "edit_user", gin.H{"user": user, "roles": userRoles})
}

func (h *Handler) EditUser(c *gin.Context) {
	id, ok := h.paramID(c, "user")
	if !ok {
		return
	}

	var form service.UserFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, "edit_user", errs.Validation("", "invalid form data"), gin.H{"roles": userRoles})
		return
	}

	user, err := h.identity.UpdateUser(c.Request.Context(), id, form)
	if err != nil {
		h.renderError(c, "edit_user", err, gin.H{"roles": userRoles, "form": form})
		return
	}

	h.record(c, "user", user.ID, "update", "user "+user.Email)
	redirectf(c, "/user/%d", user.ID)
}
