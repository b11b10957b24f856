// README: Base handler utilities (response envelope, error mapping).
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbook/internal/apperr"
)

// envelope wraps every JSON response.
type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeOK(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, envelope{Status: true, Message: msg, Data: data})
}

func writeFail(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Status: false, Message: msg})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidArgument, apperr.Conflict:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, log *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	writeFail(c, statusFor(kind), apperr.Message(err))
}
