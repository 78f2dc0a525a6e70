package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/dto"
	"github.com/piyol1998/stokcer-sub001/internal/middleware"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/piyol1998/stokcer-sub001/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	timeout         time.Duration
}

func NewCheckoutHandler(checkoutService service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		timeout:         timeout,
	}
}

// provider calls carry no timeout of their own
func (h *CheckoutHandler) withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.timeout)
}

func (h *CheckoutHandler) CheckoutPlan(c echo.Context) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var req dto.PlanCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.PlanCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "plan_code is required")
	}

	result, err := h.checkoutService.CreateSession(ctx, middleware.CurrentUser(c), req.PlanCode)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCheckoutResponse(result))
}

func (h *CheckoutHandler) CheckoutCart(c echo.Context) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	result, err := h.checkoutService.CreateCartSession(ctx, middleware.CurrentUser(c), middleware.SessionID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCheckoutResponse(result))
}

func (h *CheckoutHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.ownedSession(ctx, c, c.Param("orderID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// ownedSession hides sessions of other users behind a 404.
func (h *CheckoutHandler) ownedSession(ctx context.Context, c echo.Context, orderID string) (*model.CheckoutSession, error) {
	session, err := h.checkoutService.GetSession(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session.UserID != middleware.CurrentUser(c).ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return session, nil
}

func (h *CheckoutHandler) Charge(c echo.Context) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var req dto.ChargeRequest
	if err := c.Bind(&req); err != nil || req.Nonce == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nonce is required")
	}

	if _, err := h.ownedSession(ctx, c, c.Param("orderID")); err != nil {
		return err
	}

	session, err := h.checkoutService.ChargeNonce(ctx, c.Param("orderID"), req.Nonce)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func toCheckoutResponse(r *service.SessionResult) *dto.CheckoutResponse {
	return &dto.CheckoutResponse{
		OrderID:     r.OrderID,
		Token:       r.Token,
		RedirectURL: r.RedirectURL,
		Provider:    r.Provider,
		Amount:      r.Amount.String(),
		Currency:    r.Currency,
	}
}

func toSessionResponse(s *model.CheckoutSession) *dto.CheckoutSessionResponse {
	return &dto.CheckoutSessionResponse{
		OrderID:   s.OrderID,
		Reference: s.Reference,
		Provider:  s.Provider,
		Status:    s.Status.String(),
		Amount:    s.Amount.String(),
		Currency:  s.Currency,
		Metadata:  s.Metadata,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
