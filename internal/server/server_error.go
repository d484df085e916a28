package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sheetwright/imposer/pkg/imposition"
	"github.com/sheetwright/imposer/pkg/presets"
)

// clientErrors maps a sentinel to 400: every one of these means "the
// request's input was unusable", never "something broke on our end".
var clientErrors = []error{
	imposition.ErrEncrypted,
	imposition.ErrNoPages,
	imposition.ErrMalformedBox,
	imposition.ErrTrimExceedsSheet,
	imposition.ErrZeroNUp,
	imposition.ErrInvalidConfig,
}

// notFoundErrors maps a sentinel to 404: the named resource (session,
// preset) simply doesn't exist, as opposed to the request itself being
// malformed.
var notFoundErrors = []error{
	ErrSessionNotFound,
	presets.ErrPresetNotFound,
}

// httpError maps err to an echo.HTTPError, using errors.Cause to recognize
// a known sentinel underneath any wrapping rather than matching on message
// text.
func httpError(err error) error {
	cause := errors.Cause(err)
	for _, known := range notFoundErrors {
		if cause == known {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
	}
	for _, known := range clientErrors {
		if cause == known {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
