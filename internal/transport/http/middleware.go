package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/service"
)

const (
	contextIdentityKey = "identity"
	contextDeviceKey   = "device_id"

	deviceIDHeader   = "X-Device-ID"
	deviceCookieName = "terravia_device"
	deviceCookieTTL  = 365 * 24 * time.Hour
)

// ResolveIdentity resolves the caller's identity and device id for every
// request in the group. It never rejects: a missing or invalid bearer token
// just resolves to the anonymous identity, and requests without a device id
// get one issued via cookie. Resolution happens per request, so signing in
// or out takes effect on the very next call.
func ResolveIdentity(identity *service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextIdentityKey, identity.Resolve(bearerToken(c)))
			c.Set(contextDeviceKey, ensureDeviceID(c))
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ensureDeviceID(c echo.Context) string {
	if header := strings.TrimSpace(c.Request().Header.Get(deviceIDHeader)); header != "" {
		return header
	}
	if cookie, err := c.Cookie(deviceCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return cookie.Value
	}

	deviceID := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     deviceCookieName,
		Value:    deviceID,
		Path:     "/",
		Expires:  time.Now().Add(deviceCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return deviceID
}

func CurrentIdentity(c echo.Context) domain.Identity {
	if ident, ok := c.Get(contextIdentityKey).(domain.Identity); ok {
		return ident
	}
	return domain.Anonymous
}

func DeviceID(c echo.Context) string {
	if deviceID, ok := c.Get(contextDeviceKey).(string); ok {
		return deviceID
	}
	return ""
}
