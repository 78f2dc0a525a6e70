package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/cart"
	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/dto"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"github.com/piyol1998/stokcer-sub001/internal/service"
	"go.uber.org/zap"
)

// NewErrorHandler maps domain errors onto HTTP responses.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}

func errorResponse(err error) (int, *dto.ErrorResponse) {
	var (
		stockErr *cart.InsufficientStockError
		initErr  *service.PaymentInitError
		httpErr  *echo.HTTPError
	)

	switch {
	case errors.As(err, &stockErr):
		remaining := stockErr.Remaining()
		return http.StatusConflict, &dto.ErrorResponse{Message: stockErr.Error(), Remaining: &remaining}
	case errors.As(err, &initErr):
		return http.StatusBadGateway, &dto.ErrorResponse{Message: initErr.UserMessage}
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrMissingVariant):
		return http.StatusBadRequest, &dto.ErrorResponse{Message: err.Error()}
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, client.ErrChargeUnsupported):
		return http.StatusBadRequest, &dto.ErrorResponse{Message: rootMessage(err)}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, &dto.ErrorResponse{Message: "not found"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &dto.ErrorResponse{Message: "request timed out"}
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
		return httpErr.Code, &dto.ErrorResponse{Message: msg}
	default:
		return http.StatusInternalServerError, &dto.ErrorResponse{Message: "internal server error"}
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
