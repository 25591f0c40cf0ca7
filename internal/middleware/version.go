package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion represents API version information
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware provides API versioning functionality
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active", Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if ver, ok := vm.supportedVersions[version]; ok {
				if ver.Status == "deprecated" && ver.SunsetDate != nil {
					h.Set("X-API-Deprecated", "true")
					h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
				}
				h.Set("X-API-Message", ver.Message)
			}
			return next(c)
		}
	}
}

// APIVersionResolver rejects /vN paths for unknown N and records the version in the context.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := extractVersion(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if _, ok := vm.supportedVersions[version]; !ok {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error":              "Unsupported API version",
					"supported_versions": strings.Join(vm.SupportedVersions(), ", "),
				})
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// extractVersion returns "vN" for paths starting with /vN or /vN/.
func extractVersion(path string) string {
	segment := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	if len(segment) < 2 || segment[0] != 'v' {
		return ""
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segment
}

func (vm *VersionMiddleware) SupportedVersions() []string {
	var versions []string
	for version, info := range vm.supportedVersions {
		if info.Status == "active" || info.Status == "deprecated" {
			versions = append(versions, version)
		}
	}
	return versions
}
