package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/service"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	reconcileService service.ReconcileService
	logger           *zap.Logger
}

func NewWebhookHandler(reconcileService service.ReconcileService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

func (h *WebhookHandler) Midtrans(c echo.Context) error {
	ctx := c.Request().Context()

	var n model.MidtransNotification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification body")
	}

	return h.result(c, "midtrans", n.OrderID, h.reconcileService.HandleMidtransNotification(ctx, &n))
}

func (h *WebhookHandler) Stripe(c echo.Context) error {
	ctx := c.Request().Context()

	var event model.StripeEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event body")
	}

	return h.result(c, "stripe", event.ID, h.reconcileService.HandleStripeEvent(ctx, &event))
}

// result answers 200 for reconciliation failures; they are only logged.
func (h *WebhookHandler) result(c echo.Context, provider, ref string, err error) error {
	var recErr *service.ReconciliationError
	if errors.As(err, &recErr) {
		h.logger.Warn("webhook not reconciled",
			zap.String("provider", provider),
			zap.String("ref", ref),
			zap.Error(err))
		return c.NoContent(http.StatusOK)
	}
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
