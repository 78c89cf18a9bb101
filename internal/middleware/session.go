package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/session"
)

// HeaderBookingToken carries the booking session token.  A Bearer token in
// Authorization is accepted as well.
const HeaderBookingToken = "X-Booking-Token"

const sessionKey = "booking_session"

// BookingSession returns an Echo middleware that requires a valid booking
// session token and stores the decoded session in the context.  Handlers
// read it back with SessionFrom.
func BookingSession(codec *session.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing booking token"})
			}
			s, err := codec.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid booking token"})
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by BookingSession.
func SessionFrom(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(sessionKey).(session.Session)
	return s, ok
}

func tokenFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(HeaderBookingToken)); v != "" {
		return v
	}
	auth := r.Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
