package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// GuestAuth
//
//	@Summary		Guest session
//	@Description	Issues an anonymous session token for the analyze endpoint
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	AuthResponse
//	@Router			/auth/guest [post]
func (s *Server) guestAuth(c echo.Context) error {
	id, err := s.Sessions.Create(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, AuthResponse{SessionID: id})
}

// admit enforces the admission contract before any pipeline work: the
// bearer token must name a live session and the session must have budget
// in its window. Admit records the admitted request in the same atomic
// step as the check, so concurrent requests on one session cannot both
// get through on the same budget.
func (s *Server) admit(c echo.Context) error {
	ctx := c.Request().Context()

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if header == "" || token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !s.Sessions.Validate(ctx, token) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
	}
	if !s.Sessions.Admit(ctx, token) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	}
	return nil
}
