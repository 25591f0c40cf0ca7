package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/models"
	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers serves product reads, admin writes and attribute maintenance.
type ProductHandlers struct {
	productService   services.ProductService
	attributeService services.AttributeService
}

func NewProductHandlers(productService services.ProductService, attributeService services.AttributeService) *ProductHandlers {
	return &ProductHandlers{
		productService:   productService,
		attributeService: attributeService,
	}
}

// GetProduct godoc
// @Summary  Product with merged attributes, category label and image URLs
// @Tags     products
// @Param    id path int true "Product ID"
// @Success  200 {object} models.ProductView
// @Failure  404 {object} echo.HTTPError
// @Router   /v1/products/{id} [get]
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Failed to get product")
	}
	return c.JSON(http.StatusOK, view)
}

// GetAttributeValue godoc
// @Summary  Resolved value of one attribute, flexible store first
// @Tags     products
// @Param    id  path int    true "Product ID"
// @Param    key path string true "Attribute key"
// @Router   /v1/products/{id}/attributes/{key} [get]
func (h *ProductHandlers) GetAttributeValue(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	key := c.Param("key")
	value, ok, err := h.attributeService.GetActiveDisplayValue(c.Request().Context(), id, key)
	if err != nil {
		return httpError(err, "Failed to get attribute value")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Attribute has no value")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"key":   key,
		"value": value,
	})
}

// NewArrivals godoc
// @Summary  Products flagged as new arrivals, newest first
// @Tags     products
// @Param    limit query int false "Default 10, max 50"
// @Router   /v1/products/new-arrivals [get]
func (h *ProductHandlers) NewArrivals(c echo.Context) error {
	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = n
	}
	views, err := h.productService.NewArrivals(c.Request().Context(), limit)
	if err != nil {
		return httpError(err, "Failed to list new arrivals")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": views,
		"count":    len(views),
	})
}

func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req models.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.productService.Create(c.Request().Context(), &req)
	if err != nil {
		return httpError(err, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, cleanup, err := h.productService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return httpError(err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product":            product,
		"removed_attributes": cleanup,
	})
}

func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return httpError(err, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetAttributes returns the product-entry form values: every key of the
// product's category schema that has a value.
func (h *ProductHandlers) GetAttributes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	dict, err := h.attributeService.AttributesDict(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Failed to get product attributes")
	}
	return c.JSON(http.StatusOK, dict)
}

// SetAttribute godoc
// @Summary  Write a flexible attribute value
// @Description  A value matching a predefined choice of the attribute is stored by
// @Description  reference, anything else as a custom value.
// @Tags     admin
// @Param    id  path int    true "Product ID"
// @Param    key path string true "Global attribute key"
// @Param    body body models.AttributeValueRequest true "Value"
// @Failure  400 {object} echo.HTTPError "unknown attribute"
// @Router   /v1/admin/products/{id}/attributes/{key} [put]
func (h *ProductHandlers) SetAttribute(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.AttributeValueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	src, err := h.attributeService.SetAttributeValue(c.Request().Context(), id, c.Param("key"), req.Value)
	if err != nil {
		return httpError(err, "Failed to set attribute value")
	}
	resp := map[string]interface{}{
		"key":    c.Param("key"),
		"value":  src.Value,
		"source": src.Kind.String(),
	}
	if src.Kind == catalog.SourcePredefined {
		resp["attribute_value_id"] = src.ValueID
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandlers) SetLegacyAttribute(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.AttributeValueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.attributeService.SetLegacyValue(c.Request().Context(), id, c.Param("key"), req.Value); err != nil {
		return httpError(err, "Failed to set attribute value")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"key":    c.Param("key"),
		"value":  req.Value,
		"source": catalog.SourceLegacy.String(),
	})
}

// CleanupAttributes prunes attributes that the product's current category does not define.
func (h *ProductHandlers) CleanupAttributes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cleanup, err := h.attributeService.CleanupProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err, "Failed to clean up attributes")
	}
	return c.JSON(http.StatusOK, cleanup)
}

type newArrivalRequest struct {
	IsNewArrival *bool `json:"is_new_arrival" validate:"required"`
}

func (h *ProductHandlers) SetNewArrival(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req newArrivalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.productService.SetNewArrival(c.Request().Context(), id, *req.IsNewArrival); err != nil {
		return httpError(err, "Failed to update new arrival flag")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":             id,
		"is_new_arrival": *req.IsNewArrival,
	})
}

// UploadImage stores the multipart "image" file in object storage.
func (h *ProductHandlers) UploadImage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read image")
	}
	defer src.Close()

	var altText *string
	if alt := strings.TrimSpace(c.FormValue("alt_text")); alt != "" {
		altText = &alt
	}
	isPrimary, _ := catalog.ParseBool(c.FormValue("is_primary"))

	image, err := h.productService.UploadImage(c.Request().Context(), id, file.Filename, src, file.Size, altText, isPrimary)
	if err != nil {
		return httpError(err, "Failed to upload image")
	}
	return c.JSON(http.StatusCreated, image)
}
