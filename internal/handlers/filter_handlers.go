package handlers

import (
	"net/http"

	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
)

// FilterHandlers exposes the faceted product filter, globally and per category.
type FilterHandlers struct {
	filterService services.FilterService
}

func NewFilterHandlers(filterService services.FilterService) *FilterHandlers {
	return &FilterHandlers{filterService: filterService}
}

// FilterProducts godoc
// @Summary      Filter products across the catalog
// @Description  Attribute keys are matched against the category schema when category or
// @Description  category_id is given, otherwise against keys in use. Values of one key are
// @Description  OR-ed, keys are AND-ed. Supplying only unrecognized params returns nothing.
// @Tags         filter
// @Param        category        query int    false "Category scope"
// @Param        price_toman__gte query number false "Inclusive lower bound"
// @Param        price_toman__lte query number false "Inclusive upper bound"
// @Param        q               query string false "Case-insensitive search"
// @Param        page            query int    false "Page, default 1"
// @Param        per_page        query int    false "Page size, default 20, max 100"
// @Success      200 {object} services.FilterResult
// @Router       /v1/products/filter [get]
func (h *FilterHandlers) FilterProducts(c echo.Context) error {
	result, err := h.filterService.Filter(c.Request().Context(), nil, c.QueryParams())
	if err != nil {
		return httpError(err, "Failed to filter products")
	}
	return c.JSON(http.StatusOK, result)
}

// FilterCategory godoc
// @Summary  Filter the products of a category and its subcategories
// @Tags     filter
// @Param    id path int true "Category ID"
// @Success  200 {object} services.FilterResult
// @Failure  404 {object} echo.HTTPError
// @Router   /v1/categories/{id}/filter [get]
func (h *FilterHandlers) FilterCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	result, err := h.filterService.Filter(c.Request().Context(), &id, c.QueryParams())
	if err != nil {
		return httpError(err, "Failed to filter products")
	}
	return c.JSON(http.StatusOK, result)
}
