package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/cart"
	"github.com/piyol1998/stokcer-sub001/internal/dto"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
)

type CatalogHandler struct {
	catalogRepo repository.CatalogRepository
	planRepo    repository.PlanRepository
	formatter   *cart.Formatter
}

func NewCatalogHandler(catalogRepo repository.CatalogRepository, planRepo repository.PlanRepository, formatter *cart.Formatter) *CatalogHandler {
	return &CatalogHandler{
		catalogRepo: catalogRepo,
		planRepo:    planRepo,
		formatter:   formatter,
	}
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogRepo.ListProducts(ctx)
	if err != nil {
		return err
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		item := dto.ProductResponse{ID: p.ID, Name: p.Name, Variants: []dto.VariantResponse{}}
		for _, v := range p.Variants {
			vr := dto.VariantResponse{
				ID:              v.ID,
				Title:           v.Title,
				Price:           v.Price.String(),
				PriceFormatted:  h.formatter.Format(v.Price),
				ManageInventory: v.ManageInventory,
			}
			if v.ManageInventory {
				vr.Available = v.Stock
			}
			item.Variants = append(item.Variants, vr)
		}
		resp = append(resp, item)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	plans, err := h.planRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	resp := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, dto.PlanResponse{
			Code:     p.Code,
			Name:     p.Name,
			Price:    p.Price.String(),
			Currency: p.Currency,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
