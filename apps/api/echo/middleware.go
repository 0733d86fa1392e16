package echoapi

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core/gateway"
)

// gatewayError carries a pipeline denial to the HTTP error handler.
type gatewayError struct {
	decision gateway.Decision
}

func (e *gatewayError) Error() string {
	return "request denied: " + string(e.decision.Reason)
}

// gatewayMiddleware runs the governance pipeline in front of sensitive routes.
// Only mutating methods are throttled; administrative paths are gated
// regardless of method.
func gatewayMiddleware(pipeline *gateway.Pipeline) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			r := ctx.Request()
			if !isMutating(r.Method) && !gateway.IsAdminPath(r.URL.Path) {
				return next(ctx)
			}

			req := gateway.Request{
				Path:           r.URL.Path,
				Origin:         remoteHost(r.RemoteAddr),
				ForwardedChain: r.Header.Get(echo.HeaderXForwardedFor),
				Subject:        subjectFromRequest(r),
				UserAgent:      r.UserAgent(),
			}
			decision, err := pipeline.Check(r.Context(), req)
			if err != nil {
				return errors.Wrap(err, "running gateway pipeline")
			}
			if !decision.Allowed {
				return &gatewayError{decision: decision}
			}
			return next(ctx)
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func remoteHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
