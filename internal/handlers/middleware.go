package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"blog_api/internal/metrics"
	"blog_api/internal/models"
	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	user, err := h.services.Authorization.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			if h.log != nil {
				h.log.Errorw("auth_resolve_failed", "err", err)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		h.metrics.RecordAuthEvent(metrics.AuthTokenInvalid)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(actorKey, user)
	c.Next()
}

// actorFrom returns the authenticated user set by authMiddleware.
func actorFrom(c *gin.Context) models.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.User{}
	}
	u, _ := v.(models.User)
	return u
}

// requestLogger logs one line per request and feeds request metrics.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	elapsed := time.Since(start)

	status := c.Writer.Status()
	h.metrics.RecordRequest(c.Request.Method, c.FullPath(), status, elapsed)
	if h.log == nil {
		return
	}
	kv := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"latency", elapsed,
	}
	if u := actorFrom(c); u.ID > 0 {
		kv = append(kv, "user_id", u.ID)
	}
	if status >= http.StatusInternalServerError {
		h.log.Warnw("http_request", kv...)
		return
	}
	h.log.Infow("http_request", kv...)
}
