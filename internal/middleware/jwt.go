package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const claimsContextKey = "user"

// StaffClaims are the claims carried by admin tokens.
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig validates bearer tokens with the HMAC secret, or with keyFunc when
// it is non-nil (JWKS).
func JWTConfig(secret string, keyFunc jwt.Keyfunc) echojwt.Config {
	cfg := echojwt.Config{
		ContextKey: claimsContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(StaffClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var tokenErr *echojwt.TokenError
			if errors.As(err, &tokenErr) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		},
	}
	if keyFunc != nil {
		cfg.KeyFunc = keyFunc
	} else {
		cfg.SigningKey = []byte(secret)
	}
	return cfg
}

// NewJWKSKeyfunc fetches the key set at url and refreshes it in the background.
// The returned stop function ends the refresh goroutine.
func NewJWKSKeyfunc(url string) (jwt.Keyfunc, func(), error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warnf("failed to refresh JWKS from %s: %v", url, err)
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return jwks.Keyfunc, jwks.EndBackground, nil
}

// ClaimsFromContext returns the claims of an authenticated request.
func ClaimsFromContext(c echo.Context) (*StaffClaims, bool) {
	token, ok := c.Get(claimsContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*StaffClaims)
	return claims, ok
}
