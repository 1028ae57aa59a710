package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home lists the open tickets, earliest appointment first.
func (h *Handler) Home(c *gin.Context) {
	tickets, err := h.tickets.ListOpen(c.Request.Context())
	if err != nil {
		h.renderError(c, "home", err, nil)
		return
	}
	h.render(c, http.StatusOK, "home", gin.H{"tickets": tickets})
}

func (h *Handler) Search(c *gin.Context) {
	res, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.renderError(c, "search", err, gin.H{"query": c.Query("q")})
		return
	}
	h.render(c, http.StatusOK, "search", gin.H{
		"query":     res.Query,
		"users":     res.Users,
		"computers": res.Computers,
	})
}

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
