package echoapi

import "github.com/labstack/echo/v4"

// envelope is the uniform API response body.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func jsonSuccess(ctx echo.Context, code int, message string, data interface{}) error {
	if message == "" {
		message = "Success"
	}
	return ctx.JSON(code, envelope{Success: true, Message: message, Data: data})
}

func jsonError(ctx echo.Context, code int, message string, errFields interface{}) error {
	return ctx.JSON(code, envelope{Success: false, Message: message, Errors: errFields})
}
