package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techsupport/internal/database"
	"techsupport/internal/errs"
	"techsupport/internal/middleware"
	"techsupport/internal/service"
)

// Handler serves every page of the application.
type Handler struct {
	db       *gorm.DB
	identity *service.IdentityService
	lookups  *service.LookupService
	assets   *service.AssetService
	tickets  *service.TicketService
	search   *service.SearchService
	log      *slog.Logger
}

func New(db *gorm.DB, bcryptCost int, log *slog.Logger) *Handler {
	lookups := service.NewLookupService(db)
	return &Handler{
		db:       db,
		identity: service.NewIdentityService(db, bcryptCost),
		lookups:  lookups,
		assets:   service.NewAssetService(db, lookups),
		tickets:  service.NewTicketService(db),
		search:   service.NewSearchService(db),
		log:      log,
	}
}

// Logins exposes the login check used by the access guard.
func (h *Handler) Logins() middleware.LoginChecker {
	return h.identity
}

// render answers a view as JSON, adding the signed-in user and any queued
// flash notices.
func (h *Handler) render(c *gin.Context, status int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["view"] = view
	data["current_user"] = middleware.Current(c)
	data["flashes"] = middleware.Flashes(c)
	c.JSON(status, data)
}

// renderError answers view with the error's status and user-facing message.
func (h *Handler) renderError(c *gin.Context, view string, err error, data gin.H) {
	status := errs.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "view", view, "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
	}
	if data == nil {
		data = gin.H{}
	}
	data["error"] = errs.Message(err)
	if appErr := errs.As(err); appErr != nil && appErr.Field != "" {
		data["field"] = appErr.Field
	}
	h.render(c, status, view, data)
}

func (h *Handler) notFound(c *gin.Context, err error) {
	h.renderError(c, "not_found", err, nil)
}

// paramID parses the :id path parameter. Malformed ids are answered as not
// found, like ids that do not exist.
func (h *Handler) paramID(c *gin.Context, entity string) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		h.notFound(c, errs.NotFound("%s %q not found", entity, raw))
		return 0, false
	}
	return uint(id), true
}

// record writes an audit row for a completed change. Audit failures are
// logged and never fail the request.
func (h *Handler) record(c *gin.Context, entity string, entityID uint, action, details string) {
	var loginID uint
	if u := middleware.Current(c); u != nil {
		loginID = u.LoginID
	}
	h.recordAs(c.Request.Context(), loginID, entity, entityID, action, details)
}

func (h *Handler) recordAs(ctx context.Context, loginID uint, entity string, entityID uint, action, details string) {
	if err := database.CreateAuditLog(ctx, h.db, loginID, entity, entityID, action, details); err != nil {
		h.log.Error("audit log write failed",
			"entity", entity, "entity_id", entityID, "action", action, "error", err)
	}
}

func redirectf(c *gin.Context, format string, args ...any) {
	c.Redirect(http.StatusFound, fmt.Sprintf(format, args...))
}
