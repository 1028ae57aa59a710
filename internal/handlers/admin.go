package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"techsupport/internal/database"
	"techsupport/internal/errs"
	"techsupport/internal/middleware"
	"techsupport/internal/models"
	"techsupport/internal/service"
)

const auditPageSize = 200

func (h *Handler) adminData(c *gin.Context) (gin.H, error) {
	ctx := c.Request.Context()
	users, err := h.identity.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	computers, err := h.assets.ListComputers(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := h.tickets.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return gin.H{"users": users, "computers": computers, "tickets": tickets}, nil
}

func (h *Handler) ShowAdmin(c *gin.Context) {
	data, err := h.adminData(c)
	if err != nil {
		h.renderError(c, "admin", err, nil)
		return
	}
	h.render(c, http.StatusOK, "admin", data)
}

// AdminDelete runs one cascading delete picked by the "action" field:
// delete_user (by email), delete_computer (by computer_id) or delete_ticket
// (by ticket_id).
func (h *Handler) AdminDelete(c *gin.Context) {
	ctx := c.Request.Context()
	action := strings.TrimSpace(c.PostForm("action"))

	var (
		notice string
		err    error
	)
	switch action {
	case "delete_user":
		email := strings.TrimSpace(c.PostForm("email"))
		var user *models.User
		if user, err = h.identity.DeleteUserByEmail(ctx, email); err == nil {
			h.record(c, "user", user.ID, "delete", "user "+user.Email+" with computers and tickets")
			notice = fmt.Sprintf("User %s and everything assigned to them were deleted.", user.Email)
		}
	case "delete_computer":
		tag := strings.TrimSpace(c.PostForm("computer_id"))
		var computer *models.Computer
		if computer, err = h.assets.DeleteComputerByTag(ctx, tag); err == nil {
			h.record(c, "computer", computer.ID, "delete", "computer "+computer.Tag+" with tickets")
			notice = fmt.Sprintf("Computer %s and its tickets were deleted.", computer.Tag)
		}
	case "delete_ticket":
		raw := strings.TrimSpace(c.PostForm("ticket_id"))
		id, perr := strconv.ParseUint(raw, 10, 64)
		if perr != nil || id == 0 {
			err = errs.Validation("ticket_id", "ticket_id must be a valid id")
			break
		}
		if err = h.tickets.DeleteTicket(ctx, uint(id)); err == nil {
			h.record(c, "ticket", uint(id), "delete", "")
			notice = fmt.Sprintf("Ticket %d was deleted.", id)
		}
	default:
		err = errs.Validation("action", fmt.Sprintf("unknown action %q", action))
	}

	if err != nil {
		data, derr := h.adminData(c)
		if derr != nil {
			h.renderError(c, "admin", derr, nil)
			return
		}
		h.renderError(c, "admin", err, data)
		return
	}

	middleware.AddFlash(c, notice)
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) ShowDropdownMenus(c *gin.Context) {
	lookups, err := h.lookups.ListAll(c.Request.Context())
	if err != nil {
		h.renderError(c, "edit_dropdown_menus", err, nil)
		return
	}
	h.render(c, http.StatusOK, "edit_dropdown_menus", gin.H{"lookups": lookups, "kinds": models.LookupKinds})
}

// EditDropdownMenus adds or deletes one lookup entry: fields kind
// (company|model|cpu|os), name and action (add|delete).
func (h *Handler) EditDropdownMenus(c *gin.Context) {
	ctx := c.Request.Context()
	kind := models.LookupKind(strings.TrimSpace(c.PostForm("kind")))
	name := strings.TrimSpace(c.PostForm("name"))
	action := strings.TrimSpace(c.PostForm("action"))

	var err error
	switch action {
	case "add":
		var entry *models.LookupEntry
		if entry, err = h.lookups.Add(ctx, kind, name); err == nil {
			h.record(c, string(kind), entry.ID, "create", name)
			middleware.AddFlash(c, fmt.Sprintf("Added %s %q.", kind, name))
		}
	case "delete":
		if err = h.lookups.Delete(ctx, kind, name); err == nil {
			h.record(c, string(kind), 0, "delete", name)
			middleware.AddFlash(c, fmt.Sprintf("Deleted %s %q.", kind, name))
		}
	default:
		err = errs.Validation("action", fmt.Sprintf("unknown action %q", action))
	}

	if err != nil {
		lookups, lerr := h.lookups.ListAll(ctx)
		if lerr != nil {
			h.renderError(c, "edit_dropdown_menus", lerr, nil)
			return
		}
		h.renderError(c, "edit_dropdown_menus", err, gin.H{"lookups": lookups, "kinds": models.LookupKinds})
		return
	}
	c.Redirect(http.StatusFound, "/admin/edit_dropdown_menus")
}

func (h *Handler) ShowTechnicians(c *gin.Context) {
	techs, err := h.identity.ListTechnicians(c.Request.Context())
	if err != nil {
		h.renderError(c, "edit_technicians", err, nil)
		return
	}
	h.render(c, http.StatusOK, "edit_technicians", gin.H{"technicians": techs})
}

// EditTechnicians adds a technician, deletes one (with its login) or
// changes its role, picked by the "action" field.
func (h *Handler) EditTechnicians(c *gin.Context) {
	ctx := c.Request.Context()
	action := strings.TrimSpace(c.PostForm("action"))

	var err error
	switch action {
	case "add":
		var form service.TechnicianFields
		if err = c.ShouldBind(&form); err != nil {
			err = errs.Validation("", "invalid form data")
			break
		}
		var (
			tech    *models.Technician
			created bool
		)
		if tech, created, err = h.identity.CreateTechnician(ctx, form); err == nil {
			if created {
				h.record(c, "technician", tech.ID, "create", tech.Email)
				middleware.AddFlash(c, "Technician "+tech.Email+" added.")
			} else {
				middleware.AddFlash(c, "Technician "+tech.Email+" already exists.")
			}
		}
	case "delete", "set_role":
		var id uint64
		id, err = strconv.ParseUint(strings.TrimSpace(c.PostForm("technician_id")), 10, 64)
		if err != nil || id == 0 {
			err = errs.Validation("technician_id", "technician_id must be a valid id")
			break
		}
		if action == "delete" {
			var tech *models.Technician
			if tech, err = h.identity.DeleteTechnician(ctx, uint(id)); err == nil {
				h.record(c, "technician", tech.ID, "delete", tech.Email)
				middleware.AddFlash(c, "Technician "+tech.Email+" and their login were deleted.")
			}
			break
		}
		role := models.TechRole(strings.TrimSpace(c.PostForm("role")))
		if err = h.identity.SetTechnicianRole(ctx, uint(id), role); err == nil {
			h.record(c, "technician", uint(id), "set_role", string(role))
			middleware.AddFlash(c, "Role changed to "+string(role)+".")
		}
	default:
		err = errs.Validation("action", fmt.Sprintf("unknown action %q", action))
	}

	if err != nil {
		techs, terr := h.identity.ListTechnicians(ctx)
		if terr != nil {
			h.renderError(c, "edit_technicians", terr, nil)
			return
		}
		h.renderError(c, "edit_technicians", err, gin.H{"technicians": techs})
		return
	}
	c.Redirect(http.StatusFound, "/admin/edit_technicians")
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	logs, err := database.RecentAuditLogs(c.Request.Context(), h.db, auditPageSize)
	if err != nil {
		h.renderError(c, "audit", err, nil)
		return
	}
	h.render(c, http.StatusOK, "audit", gin.H{"logs": logs})
}
