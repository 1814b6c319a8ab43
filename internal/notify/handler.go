package notify

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/shared/server/respond"
)

// Handler exposes recorded notification attempts for local debugging.
type Handler struct {
	Attempts AttemptRepo
}

// NewHandler constructs a Handler.
func NewHandler(attempts AttemptRepo) *Handler {
	return &Handler{Attempts: attempts}
}

// RegisterDevRoutes attaches the dev-only routes to the router group.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.GET("/notify-attempts", h.listAttempts)
}

func (h *Handler) listAttempts(c *gin.Context) {
	if h.Attempts == nil {
		respond.JSON(c, http.StatusOK, gin.H{"items": []Attempt{}})
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be between 1 and 500", nil)
			return
		}
		limit = parsed
	}
	items, err := h.Attempts.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list notify attempts", nil)
		return
	}
	if items == nil {
		items = []Attempt{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items})
}
