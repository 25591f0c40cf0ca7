package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// AuditAdmin logs every mutating admin request with the acting subject and outcome.
func AuditAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodGet || req.Method == http.MethodHead || req.Method == http.MethodOptions {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			subject := "anonymous"
			if claims, ok := ClaimsFromContext(c); ok && claims.Subject != "" {
				subject = claims.Subject
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			log.Infoj(log.JSON{
				"audit":      "admin",
				"subject":    subject,
				"method":     req.Method,
				"path":       c.Path(),
				"uri":        req.RequestURI,
				"status":     status,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"latency_ms": time.Since(start).Milliseconds(),
			})
			return err
		}
	}
}
