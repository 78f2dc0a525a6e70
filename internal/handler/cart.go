package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/cart"
	"github.com/piyol1998/stokcer-sub001/internal/dto"
	"github.com/piyol1998/stokcer-sub001/internal/middleware"
	"github.com/piyol1998/stokcer-sub001/internal/service"
)

type CartHandler struct {
	cartService service.CartService
	formatter   *cart.Formatter
}

func NewCartHandler(cartService service.CartService, formatter *cart.Formatter) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		formatter:   formatter,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	result := h.cartService.Get(ctx, middleware.SessionID(c))

	return c.JSON(http.StatusOK, h.toResponse(result))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.VariantID == "" {
		return cart.ErrMissingVariant
	}

	select {
	case err := <-h.cartService.AddItemAsync(ctx, sid, req.VariantID, req.Quantity):
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	resp := h.toResponse(h.cartService.Get(ctx, sid))
	resp.Open = true
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result := h.cartService.UpdateQuantity(ctx, middleware.SessionID(c), c.Param("variantID"), req.Quantity)

	return c.JSON(http.StatusOK, h.toResponse(result))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	result := h.cartService.RemoveItem(ctx, middleware.SessionID(c), c.Param("variantID"))

	return c.JSON(http.StatusOK, h.toResponse(result))
}

func (h *CartHandler) Clear(c echo.Context) error {
	h.cartService.Clear(c.Request().Context(), middleware.SessionID(c))
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) toResponse(c *cart.Cart) *dto.CartResponse {
	items := c.Items()
	resp := &dto.CartResponse{
		Items:          make([]dto.CartLine, 0, len(items)),
		Count:          c.Count(),
		Total:          c.Total().StringFixed(int32(h.formatter.Scale())),
		TotalFormatted: h.formatter.Format(c.Total()),
		Currency:       h.formatter.Currency(),
	}
	for _, l := range items {
		resp.Items = append(resp.Items, dto.CartLine{
			ProductID:       l.ProductID,
			VariantID:       l.VariantID,
			Name:            l.Name(),
			Quantity:        l.Quantity,
			UnitPrice:       h.formatter.Format(l.UnitPrice),
			Subtotal:        h.formatter.Format(l.Subtotal()),
			ManageInventory: l.ManageInventory,
		})
	}
	return resp
}
