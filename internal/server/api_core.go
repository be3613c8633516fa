package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskboard/internal/model"
)

// requestError is a 400 caused by the request body itself.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

var (
	errMalformed = &requestError{"Invalid JSON payload"}
	errTooLarge  = &requestError{"Request body too large"}
)

type message struct {
	Message string `json:"message"`
}

// readJSON decodes the request body into dst. An empty body leaves dst untouched.
func (s *Server) readJSON(c echo.Context, dst any) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errTooLarge
		}
		return errMalformed
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errMalformed
	}
	return nil
}

func writeError(c echo.Context, status int, msg string) error {
	return c.JSON(status, message{Message: msg})
}

// handleError maps every error returned by a handler to a {message} response.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, "Unexpected server error"

	var reqErr *requestError
	var valErr *model.ValidationError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &reqErr):
		status, msg = http.StatusBadRequest, reqErr.msg
	case errors.As(err, &valErr):
		status, msg = http.StatusBadRequest, valErr.Message
	case errors.Is(err, model.ErrNotFound):
		status, msg = http.StatusNotFound, capitalize(err.Error())
	case errors.As(err, &httpErr):
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			status, msg = http.StatusNotFound, "Route not found"
		case http.StatusTooManyRequests:
			status, msg = http.StatusTooManyRequests, "Too many requests"
		default:
			if httpErr.Code < http.StatusInternalServerError {
				status, msg = httpErr.Code, http.StatusText(httpErr.Code)
			}
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = writeError(c, status, msg)
	}
	if err != nil {
		s.log.Warn("write error response", zap.Error(err))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// withCORS runs before routing so preflight requests to any path succeed.
func withCORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		return next(c)
	}
}

// withObservability logs and measures every request. Errors are rendered here
// so the logged status is the one the client sees.
func (s *Server) withObservability(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		s.metrics.inflight.Inc()
		defer s.metrics.inflight.Dec()

		if err := next(c); err != nil {
			c.Error(err)
		}

		dur := time.Since(start)
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.observe(c.Request().Method, route, status, dur)

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", status),
			zap.Int64("dur_ms", dur.Milliseconds()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		}
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			s.log.Debug("http", fields...)
		} else {
			s.log.Info("http", fields...)
		}
		return nil
	}
}
