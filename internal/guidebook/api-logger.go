package guidebook

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	stack_error "github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/stack-error"
)

// EError отвечает клиенту ошибкой API. Доменные ошибки редактора переводятся в коды каталога,
// остальные логируются вместе со следом и отдаются как ErrGeneric.
func EError(c echo.Context, err error) error {
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
		)
		return EErrorDefined(c, apierrors.ErrGeneric)
	}

	if defined, ok := apierrors.FromDomain(err); ok {
		if defined.StatusCode >= http.StatusInternalServerError {
			stack_error.GetError(c, err)
		} else {
			slog.Debug("API error", "err", err, "code", defined.Code, "url", c.Request().URL)
		}
		return EErrorDefined(c, defined)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return EErrorDefined(c, apierrors.ErrBadRequest.WithFormattedMessage(verrs.Error()))
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return EErrorMsgStatus(c, he, he.Code)
	}

	stack_error.GetError(c, err)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// EErrorMsgStatus отвечает ошибкой с заданным статусом HTTP.
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err != nil {
		er.Err = err.Error()
		// Ignore log 404 error
		if status != http.StatusNotFound {
			slog.Error("API error", "err", err, "status", status, "method", c.Request().Method, "url", c.Request().URL)
		}
	}
	return EErrorDefined(c, er)
}

// EErrorDefined отвечает ошибкой каталога.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}
