package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"exchangecatalog/internal/service"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// ServiceError maps the service error taxonomy onto HTTP statuses.
func ServiceError(c *gin.Context, err error) {
	var (
		notFound     *service.NotFoundError
		conflict     *service.ConflictError
		crossVendor  *service.CrossVendorLinkError
		unknownField *service.UnknownCanonicalFieldError
		unknownSrc   *service.UnknownSourceError
	)
	switch {
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &conflict), errors.As(err, &crossVendor):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.As(err, &unknownField), errors.As(err, &unknownSrc):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
