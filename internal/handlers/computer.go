package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techsupport/internal/errs"
	"techsupport/internal/models"
	"techsupport/internal/service"
)

var computerLocations = []models.ComputerLocation{
	models.LocationOffice, models.LocationHome, models.LocationHCS, models.LocationRecycling,
}

// computerFormData loads the dropdown contents of the computer forms.
func (h *Handler) computerFormData(c *gin.Context, data gin.H) (gin.H, error) {
	ctx := c.Request.Context()
	users, err := h.identity.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	lookups, err := h.lookups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = gin.H{}
	}
	data["users"] = users
	data["lookups"] = lookups
	data["locations"] = computerLocations
	return data, nil
}

func (h *Handler) renderComputerForm(c *gin.Context, status int, view string, data gin.H, cause error) {
	data, err := h.computerFormData(c, data)
	if err != nil {
		h.renderError(c, view, err, nil)
		return
	}
	if cause != nil {
		h.renderError(c, view, cause, data)
		return
	}
	h.render(c, status, view, data)
}

func (h *Handler) ShowAddComputer(c *gin.Context) {
	h.renderComputerForm(c, http.StatusOK, "add_computer", gin.H{"user_id": c.Query("user_id")}, nil)
}

func (h *Handler) AddComputer(c *gin.Context) {
	var form service.ComputerFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderComputerForm(c, 0, "add_computer", nil, errs.Validation("", "invalid form data"))
		return
	}

	computer, err := h.assets.CreateComputer(c.Request.Context(), form)
	if err != nil {
		h.renderComputerForm(c, 0, "add_computer", gin.H{"form": form}, err)
		return
	}

	h.record(c, "computer", computer.ID, "create", "computer "+computer.Tag)
	redirectf(c, "/computer/%d", computer.ID)
}

func (h *Handler) ShowComputer(c *gin.Context) {
	id, ok := h.paramID(c, "computer")
	if !ok {
		return
	}
	computer, err := h.assets.GetComputer(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "computer", err, nil)
		return
	}
	h.render(c, http.StatusOK, "computer", gin.H{"computer": computer})
}

func (h *Handler) ShowEditComputer(c *gin.Context) {
	id, ok := h.paramID(c, "computer")
	if !ok {
		return
	}
	computer, err := h.assets.GetComputer(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "edit_computer", err, nil)
		return
	}
	h.renderComputerForm(c, http.StatusOK, "edit_computer", gin.H{"computer": computer}, nil)
}

func (h *Handler) EditComputer(c *gin.Context) {
	id, ok := h.paramID(c, "computer")
	if !ok {
		return
	}

	var form service.ComputerFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderComputerForm(c, 0, "edit_computer", nil, errs.Validation("", "invalid form data"))
		return
	}

	computer, err := h.assets.UpdateComputer(c.Request.Context(), id, form)
	if err != nil {
		h.renderComputerForm(c, 0, "edit_computer", gin.H{"form": form}, err)
		return
	}

	h.record(c, "computer", computer.ID, "update", "computer "+computer.Tag)
	redirectf(c, "/computer/%d", computer.ID)
}
