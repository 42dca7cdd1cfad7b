package handler // handler defines http handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated profile ID that the JWT
// middleware stored in the echo.Context.  Profile IDs are UUID
// strings; anything else is treated as an unauthenticated request.
func getUserID(c echo.Context) (string, error) {
	v := c.Get("user_id")
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}
