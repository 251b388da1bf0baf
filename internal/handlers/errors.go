package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/logger"
)

var errInvalidPostID = errorx.New(errorx.InvalidInput, "invalid_post_id", "invalid post id")

// NewHTTPErrorHandler renders every error as {"error": ..., "details": ...}.
// Details are only included in development.
func NewHTTPErrorHandler(development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"
		details := ""

		var xe *errorx.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &xe):
			status = xe.Kind.Status()
			message = xe.Message
			details = xe.Details()
		case errors.As(err, &he):
			status = he.Code
			message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				details = he.Internal.Error()
			}
		default:
			details = err.Error()
		}

		if status >= http.StatusInternalServerError {
			l := logger.Ctx(c.Request().Context())
			l.Error().Err(err).Int(logger.FieldStatus, status).Msg("request failed")
		}

		body := echo.Map{"error": message}
		if development && details != "" {
			body["details"] = details
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			l := logger.Ctx(c.Request().Context())
			l.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func postIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidPostID
	}
	return uint(id), nil
}

// pageParam reads the 1-based page query parameter. Missing or malformed
// values mean the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errorx.Wrap(errorx.InvalidInput, err, "invalid request payload")
	}
	return c.Validate(req)
}
