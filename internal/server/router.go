package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"techsupport/internal/config"
	"techsupport/internal/handlers"
	"techsupport/internal/middleware"
)

const sessionName = "techsupport_session"

func NewRouter(cfg *config.Config, db *gorm.DB, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	h := handlers.New(db, cfg.BcryptCost, log)

	r.Use(middleware.InjectUser(h.Logins(), log))
	r.Use(middleware.RequestLogger(log))

	// AUTH
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/create_first_admin", h.ShowCreateFirstAdmin)
	r.POST("/create_first_admin", h.CreateFirstAdmin)
	r.GET("/create_account", h.ShowCreateAccount)
	r.POST("/create_account", h.CreateAccount)

	// TECHNICIAN
	tech := r.Group("/")
	tech.Use(middleware.RequireTechnician(h.Logins(), log))

	tech.GET("/", h.Home)
	tech.GET("/search", h.Search)

	tech.GET("/add_user", h.ShowAddUser)
	tech.POST("/add_user", h.AddUser)
	tech.GET("/user/:id", h.ShowUser)
	tech.GET("/edit_user/:id", h.ShowEditUser)
	tech.POST("/edit_user/:id", h.EditUser)

	tech.GET("/add_computer", h.ShowAddComputer)
	tech.POST("/add_computer", h.AddComputer)
	tech.GET("/computer/:id", h.ShowComputer)
	tech.GET("/edit_computer/:id", h.ShowEditComputer)
	tech.POST("/edit_computer/:id", h.EditComputer)

	tech.GET("/add_ticket", h.ShowAddTicket)
	tech.POST("/add_ticket", h.AddTicket)
	tech.GET("/edit_ticket/:id", h.ShowEditTicket)
	tech.POST("/edit_ticket/:id", h.EditTicket)

	// ADMIN
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.Logins(), log))

	admin.GET("", h.ShowAdmin)
	admin.POST("", h.AdminDelete)
	admin.GET("/edit_dropdown_menus", h.ShowDropdownMenus)
	admin.POST("/edit_dropdown_menus", h.EditDropdownMenus)
	admin.GET("/edit_technicians", h.ShowTechnicians)
	admin.POST("/edit_technicians", h.EditTechnicians)
	admin.GET("/audit", h.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", handlers.Health)

	return r
}
