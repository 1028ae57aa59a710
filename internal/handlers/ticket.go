package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"techsupport/internal/errs"
	"techsupport/internal/models"
	"techsupport/internal/service"
)

var ticketLocations = []models.TicketLocation{models.TicketInHouse, models.TicketAtOffice, models.TicketRemote}

func (h *Handler) ticketFormData(c *gin.Context, data gin.H) (gin.H, error) {
	ctx := c.Request.Context()
	users, err := h.identity.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	computers, err := h.assets.ListComputers(ctx)
	if err != nil {
		return nil, err
	}
	techs, err := h.identity.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = gin.H{}
	}
	data["users"] = users
	data["computers"] = computers
	data["technicians"] = techs
	data["locations"] = ticketLocations
	return data, nil
}

func (h *Handler) renderTicketForm(c *gin.Context, status int, view string, data gin.H, cause error) {
	data, err := h.ticketFormData(c, data)
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

func (h *Handler) ShowAddTicket(c *gin.Context) {
	h.renderTicketForm(c, http.StatusOK, "add_ticket", gin.H{
		"user_id":     c.Query("user_id"),
		"computer_id": c.Query("computer_id"),
	}, nil)
}

func (h *Handler) AddTicket(c *gin.Context) {
	var form service.TicketFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderTicketForm(c, 0, "add_ticket", nil, errs.Validation("", "invalid form data"))
		return
	}

	ticket, err := h.tickets.CreateTicket(c.Request.Context(), form)
	if err != nil {
		h.renderTicketForm(c, 0, "add_ticket", gin.H{"form": form}, err)
		return
	}

	h.record(c, "ticket", ticket.ID, "create", ticket.IssueSummary)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) ShowEditTicket(c *gin.Context) {
	id, ok := h.paramID(c, "ticket")
	if !ok {
		return
	}
	ticket, err := h.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, "edit_ticket", err, nil)
		return
	}
	h.renderTicketForm(c, http.StatusOK, "edit_ticket", gin.H{"ticket": ticket}, nil)
}

func (h *Handler) EditTicket(c *gin.Context) {
	id, ok := h.paramID(c, "ticket")
	if !ok {
		return
	}

	var form service.TicketFields
	if err := c.ShouldBind(&form); err != nil {
		h.renderTicketForm(c, 0, "edit_ticket", nil, errs.Validation("", "invalid form data"))
		return
	}

	ticket, err := h.tickets.UpdateTicket(c.Request.Context(), id, form)
	if err != nil {
		h.renderTicketForm(c, 0, "edit_ticket", gin.H{"form": form}, err)
		return
	}

	action := "update"
	if !ticket.IsOpen() {
		action = "close"
	}
	h.record(c, "ticket", ticket.ID, action, "status "+ticket.Status)
	c.Redirect(http.StatusFound, "/")
}
