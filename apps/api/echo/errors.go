package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/exam"
	"github.com/trezcool/mtihani/core/gateway"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

	gatewayMessages = map[gateway.Reason]string{
		gateway.ReasonRateLimited:        "Rate limit exceeded. Please try again later.",
		gateway.ReasonSuspiciousActivity: "Suspicious activity detected. Exam submission blocked.",
		gateway.ReasonIPNotWhitelisted:   "Access denied. IP not whitelisted.",
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that translates our
// errors into the {success, message, data|errors} envelope.
// signalShutdown is called to gracefully stop the Server whenever a core.shutdown
// error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string
		var errFields interface{}

		switch origErr := errors.Cause(err).(type) {
		case *gatewayError:
			code, message, errFields = translateDenial(ctx, origErr.decision)
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = "user not authenticated"
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusUnprocessableEntity
			message = "Validation failed"
			errFields = fldErrs
		case *core.ValidationError:
			code = http.StatusUnprocessableEntity
			message = "Validation failed"
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				errFields = fldErrs
			} else if origErr.Err != nil {
				message = origErr.Error()
			}
		default:
			switch origErr {
			case exam.ErrSubmissionNotFound:
				code = http.StatusNotFound
				message = "Exam not found"
			case exam.ErrAlreadyCompleted:
				code = http.StatusUnprocessableEntity
				message = "Exam already completed"
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(code) // no internal detail leaked
				logger.Error(message, err, map[string]interface{}{
					"path":      ctx.Request().URL.Path,
					"requestID": ctx.Response().Header().Get(echo.HeaderXRequestID),
				})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			var werr error
			if ctx.Request().Method == http.MethodHead {
				werr = ctx.NoContent(code)
			} else {
				werr = jsonError(ctx, code, message, errFields)
			}
			if werr != nil {
				ctx.Echo().Logger.Error(werr)
			}
		}
	}
}

func translateDenial(ctx echo.Context, d gateway.Decision) (int, string, interface{}) {
	message := gatewayMessages[d.Reason]
	fields := map[string]interface{}{"code": string(d.Reason)}

	if d.Reason == gateway.ReasonRateLimited {
		retryAfter := int(d.RetryAfter.Seconds())
		fields["retry_after_seconds"] = retryAfter
		ctx.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return http.StatusTooManyRequests, message, fields
	}
	return http.StatusForbidden, message, fields
}
