package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"blog_api/internal/policy"
	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
)

// validationBody is the 422 payload: a summary message plus per-field messages.
func validationBody(ve *service.ValidationError) gin.H {
	return gin.H{"message": ve.Error(), "errors": ve.Fields}
}

// writeError maps a service error to exactly one JSON response.
// event names the failed operation in the log line.
func (h *Handler) writeError(c *gin.Context, err error, event string, kv ...any) {
	var (
		ve     *service.ValidationError
		denied *policy.DeniedError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, validationBody(ve))
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, service.ErrForbidden):
		if errors.As(err, &denied) {
			h.metrics.RecordDenied(string(denied.Kind), string(denied.Action))
		}
		if h.log != nil {
			h.log.Infow(event, append(kv, "err", err)...)
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "this action is unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
	default:
		if h.log != nil {
			h.log.Errorw(event, append(kv, "err", err)...)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// writeDeleteError is writeError except that storage failures answer
// {"success": false}.
func (h *Handler) writeDeleteError(c *gin.Context, err error, event string, kv ...any) {
	var ve *service.ValidationError
	if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrForbidden) ||
		errors.Is(err, service.ErrNotFound) || errors.As(err, &ve) {
		h.writeError(c, err, event, kv...)
		return
	}
	if h.log != nil {
		h.log.Errorw(event, append(kv, "err", err)...)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false})
}

// bindJSON decodes the body into dst and answers 422 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := h.decodeBody(c, dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationBody(err))
		return false
	}
	return true
}

// bodyDecoder hands decoding to the service, which runs it after the
// target is loaded and authorized.
func (h *Handler) bodyDecoder(c *gin.Context) service.Decoder {
	return func(dst any) error {
		if ve := h.decodeBody(c, dst); ve != nil {
			return ve
		}
		return nil
	}
}

// decodeBody reads the JSON body into dst. An empty body decodes as {} so
// the field rules report what is missing.
func (h *Handler) decodeBody(c *gin.Context, dst any) *service.ValidationError {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	if h.log != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
	}

	ve := &service.ValidationError{}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		name := strings.ReplaceAll(typeErr.Field, "_", " ")
		ve.Add(typeErr.Field, fmt.Sprintf("The %s field must be %s.", name, jsonKind(typeErr.Type.Kind())))
	} else {
		ve.Add("body", "The request body must be valid JSON.")
	}
	return ve
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	default:
		return "of type " + k.String()
	}
}

// pathID parses a positive integer path parameter. Anything else is a
// resource that cannot exist.
func (h *Handler) pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
