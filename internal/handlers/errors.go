package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shopcatalog/internal/catalog"
	"shopcatalog/internal/repositories"
	"shopcatalog/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// httpError maps domain errors onto HTTP errors. Anything unrecognized is
// logged and reported as a 500 without leaking the cause.
func httpError(err error, fallback string) error {
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, repositories.ErrImageNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrUnknownAttribute),
		errors.Is(err, catalog.ErrCategoryCycle),
		errors.Is(err, catalog.ErrInvalidValue):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrAlreadyExists),
		errors.Is(err, catalog.ErrCategoryInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	log.Errorf("%s: %v", fallback, err)
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" format")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
