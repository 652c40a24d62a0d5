package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error string `json:"error"`
	Title string `json:"title,omitempty"`
}

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := describe(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Unhandled error", "method", c.Request().Method, "path", c.Path(), "error", err)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

// describe maps an error chain to a status code and response body. Internal
// details of unexpected errors are not exposed.
func describe(err error) (int, errorBody) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Message, Title: "validation error"}
	case errors.As(err, &nf):
		return http.StatusNotFound, errorBody{Error: nf.Error(), Title: "not found"}
	case errors.As(err, &ce):
		return http.StatusConflict, errorBody{Error: ce.Message, Title: "conflict"}
	case errors.As(err, &he):
		return he.Code, errorBody{Error: fmt.Sprintf("%v", he.Message)}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal server error"}
}
