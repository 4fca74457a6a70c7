package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/folio/server/internal/observability"
)

// RequestContext attaches an observability.RequestContext to every request,
// echoes its id in the X-Request-Id header and logs the outcome.
func RequestContext(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var reqCtx *observability.RequestContext
			if id := req.Header.Get(echo.HeaderXRequestID); id != "" {
				reqCtx = observability.NewRequestContextWithID(logger, id, req.Method, c.Path())
			} else {
				reqCtx = observability.NewRequestContext(logger, req.Method, c.Path())
			}
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)

			err := next(c)
			if err != nil {
				// Let echo write the error response so the status below is final.
				c.Error(err)
			}

			status := c.Response().Status
			observability.RecordAPIRequest(req.Method, c.Path(), status, reqCtx.Duration())
			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			switch {
			case err != nil && status >= 500:
				reqCtx.Error("request failed", err, attrs...)
			case status >= 400:
				reqCtx.Warn("request rejected", attrs...)
			default:
				reqCtx.Info("request handled", attrs...)
			}
			return nil
		}
	}
}
