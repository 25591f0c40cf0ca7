package handlers

import (
	"net/http"
	"strings"

	"shopcatalog/internal/models"
	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers serves the storefront category endpoints and their admin counterparts.
type CategoryHandlers struct {
	categoryService services.CategoryService
}

func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

// Navigation godoc
// @Summary  Storefront category menu
// @Tags     categories
// @Param    section query string false "men, women, unisex or general"
// @Success  200 {object} map[string]interface{}
// @Router   /v1/categories [get]
func (h *CategoryHandlers) Navigation(c echo.Context) error {
	section := models.DisplaySection(strings.TrimSpace(c.QueryParam("section")))
	switch section {
	case "", models.SectionMen, models.SectionWomen, models.SectionUnisex, models.SectionGeneral:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid section")
	}

	nodes, err := h.categoryService.Navigation(c.Request().Context(), section)
	if err != nil {
		return httpError(err, "Failed to build navigation")
	}
	if nodes == nil {
		nodes = []*models.CategoryNode{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": nodes,
	})
}

// GetCategory godoc
// @Summary  Category with effective type and product count
// @Tags     categories
// @Param    id path int true "Category ID"
// @Success  200 {object} services.CategoryDetail
// @Failure  404 {object} echo.HTTPError
// @Router   /v1/categories/{id} [get]
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.categoryService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Failed to get category")
	}
	return c.JSON(http.StatusOK, detail)
}

// GetAttributes godoc
// @Summary  Product-entry attribute schema of a category
// @Tags     categories
// @Param    id path int true "Category ID"
// @Success  200 {array} models.CategoryAttribute
// @Router   /v1/categories/{id}/attributes [get]
func (h *CategoryHandlers) GetAttributes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	attributes, err := h.categoryService.AttributeSchema(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Failed to get category attributes")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"category_id": id,
		"attributes":  attributes,
	})
}

// GetFacetValues godoc
// @Summary  Selectable values of a filter key within a category
// @Tags     categories
// @Param    id  path int    true "Category ID"
// @Param    key path string true "Attribute key"
// @Success  200 {array} models.FacetValue
// @Router   /v1/categories/{id}/facets/{key} [get]
func (h *CategoryHandlers) GetFacetValues(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	key := strings.TrimSpace(c.Param("key"))
	values, err := h.categoryService.FacetValues(c.Request().Context(), id, key)
	if err != nil {
		return httpError(err, "Failed to get facet values")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"key":    key,
		"values": values,
	})
}

func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req models.CategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.categoryService.Create(c.Request().Context(), &req)
	if err != nil {
		return httpError(err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.CategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.categoryService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return httpError(err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		return httpError(err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandlers) AddAttribute(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.CategoryAttributeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	attribute, err := h.categoryService.AddAttribute(c.Request().Context(), id, &req)
	if err != nil {
		return httpError(err, "Failed to add category attribute")
	}
	return c.JSON(http.StatusCreated, attribute)
}

func (h *CategoryHandlers) RemoveAttribute(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.categoryService.RemoveAttribute(c.Request().Context(), id, c.Param("key")); err != nil {
		return httpError(err, "Failed to remove category attribute")
	}
	return c.NoContent(http.StatusNoContent)
}
