package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// boundLayouts are tried in order. wholeDay layouts carry no clock time.
var boundLayouts = []struct {
	layout   string
	wholeDay bool
}{
	{time.RFC3339, false},
	{time.DateTime, false},
	{time.DateOnly, true},
}

// parseBound reads one end of an activity window in UTC. A date-only upper
// bound stretches to the last instant of that day.
func parseBound(raw string, upper bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, b := range boundLayouts {
		t, err := time.Parse(b.layout, raw)
		if err != nil {
			continue
		}
		t = t.UTC()
		if upper && b.wholeDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", raw)
}

// @Summary      List own activity
// @Description  Filter the caller's audit trail by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         activity
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(REGISTER,LOGIN,LOGOUT,POST_CREATE,POST_UPDATE,POST_DELETE,COMMENT_CREATE,COMMENT_UPDATE,COMMENT_DELETE,ACCESS_DENIED)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /activity [get]
// @Security     BearerAuth
func (h *Handler) getActivity(c *gin.Context) {
	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		badBound(c, "from")
		return
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		badBound(c, "to")
		return
	}

	actor := actorFrom(c)
	events, err := h.services.Activity.List(c.Request.Context(), actor, service.ActivityFilter{
		From: from,
		To:   to,
		Type: c.Query("type"),
	})
	if err != nil {
		h.writeError(c, err, "activity_list_failed", "user_id", actor.ID, "from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func badBound(c *gin.Context, key string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": fmt.Sprintf("invalid '%s' time; use RFC3339, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD", key),
	})
}
