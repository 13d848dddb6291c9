package handler

import (
	"errors"
	"net/http"

	"freightdesk/pkg/apperror"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError writes the error envelope for err. Internal errors are logged and answered
// with their client-safe message only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	status := kind.HTTPStatus()
	if kind == apperror.KindInternal {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, response.Error(status, apperror.Message(err)))
}

// respondBindError answers 400 for a payload that failed binding or validation.
func respondBindError(c *gin.Context, err error) {
	message := "Invalid request payload"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		message = fe.Field() + " failed on the '" + fe.Tag() + "' rule"
	}
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, message))
}
