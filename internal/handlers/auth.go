package handlers

import (
	"errors"
	"net/http"

	"blog_api/internal/metrics"
	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Register
// @Description  Creates an account and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      service.RegisterInput  true  "name, email, password"
// @Success      200    {object}  map[string]string      "token"
// @Failure      422    {object}  map[string]interface{}
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	var input service.RegisterInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	user, token, err := h.services.Authorization.Register(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err, "auth_register_failed", "email", input.Email)
		return
	}

	h.metrics.RecordAuthEvent(metrics.AuthRegister)
	if h.log != nil {
		h.log.Infow("auth_registered", "user_id", user.ID)
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Login
// @Description  Exchanges credentials for a new bearer token. Unknown email and wrong password answer the same way.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      service.LoginInput  true  "email, password"
// @Success      200    {object}  map[string]interface{}  "user, token"
// @Failure      401    {object}  map[string]bool
// @Failure      422    {object}  map[string]interface{}
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	var input service.LoginInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	user, token, err := h.services.Authorization.Login(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.RecordAuthEvent(metrics.AuthLoginFailed)
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "email", input.Email)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false})
			return
		}
		h.writeError(c, err, "auth_sign_in_failed", "email", input.Email)
		return
	}

	h.metrics.RecordAuthEvent(metrics.AuthLogin)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// @Summary   Logout
// @Description  Revokes every token of the caller.
// @Tags      auth
// @Produce   json
// @Success   200  {object}  map[string]bool
// @Failure   401  {object}  map[string]string
// @Router    /logout [post]
// @Security  BearerAuth
func (h *Handler) logout(c *gin.Context) {
	actor := actorFrom(c)
	if err := h.services.Authorization.Logout(c.Request.Context(), actor); err != nil {
		h.writeError(c, err, "auth_logout_failed", "user_id", actor.ID)
		return
	}
	h.metrics.RecordAuthEvent(metrics.AuthLogout)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary   Current user
// @Tags      auth
// @Produce   json
// @Success   200  {object}  models.User
// @Failure   401  {object}  map[string]string
// @Router    /me [get]
// @Security  BearerAuth
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, actorFrom(c))
}
