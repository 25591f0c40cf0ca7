package handlers

import (
	"net/http"

	"shopcatalog/internal/models"
	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
)

// AttributeHandlers manages the global attribute registry.
type AttributeHandlers struct {
	attributeService services.AttributeService
}

func NewAttributeHandlers(attributeService services.AttributeService) *AttributeHandlers {
	return &AttributeHandlers{attributeService: attributeService}
}

func (h *AttributeHandlers) ListAttributes(c echo.Context) error {
	attributes, err := h.attributeService.ListAttributes(c.Request().Context())
	if err != nil {
		return httpError(err, "Failed to list attributes")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"attributes": attributes,
	})
}

func (h *AttributeHandlers) CreateAttribute(c echo.Context) error {
	var req models.AttributeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	attribute, err := h.attributeService.CreateAttribute(c.Request().Context(), &req)
	if err != nil {
		return httpError(err, "Failed to create attribute")
	}
	return c.JSON(http.StatusCreated, attribute)
}

func (h *AttributeHandlers) ListValues(c echo.Context) error {
	key := c.Param("key")
	values, err := h.attributeService.ListAttributeValues(c.Request().Context(), key)
	if err != nil {
		return httpError(err, "Failed to list attribute values")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"key":    key,
		"values": values,
	})
}

func (h *AttributeHandlers) AddValue(c echo.Context) error {
	var req models.AttributeValueInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	value, err := h.attributeService.AddAttributeValue(c.Request().Context(), c.Param("key"), &req)
	if err != nil {
		return httpError(err, "Failed to add attribute value")
	}
	return c.JSON(http.StatusCreated, value)
}
