// Пакет содержит определения ошибок API редактора: сессии, состояние редактирования, проверка атрибутов и операции с документом.
// Каждая ошибка имеет код, статус HTTP и описание на английском и русском языках.
//
// Основные возможности:
//   - Коды ошибок по группам: 1*** сессии, 2*** редактирование, 3*** проверка, 4*** документ.
//   - Перевод доменных ошибок пакетов редактора в ошибки API.
//   - Форматирование сообщений об ошибках с аргументами.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/editstate"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/edtypes"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/forms"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/editor/schema"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
)

type DefinedError struct {
	Code       int                `json:"code"`
	StatusCode int                `json:"-"`
	Err        string             `json:"error"`
	RuErr      string             `json:"ru_error,omitempty"`
	Fields     []forms.FieldError `json:"fields,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Is сравнивает ошибки по коду.
func (e DefinedError) Is(target error) bool {
	t, ok := target.(DefinedError)
	return ok && t.Code == e.Code
}

var (
	// 0*** - common errors
	ErrGeneric       = DefinedError{Code: 1, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
	ErrEntityToLarge = DefinedError{Code: 2, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Слишком большой запрос"}
	ErrBadRequest    = DefinedError{Code: 3, StatusCode: http.StatusBadRequest, Err: "bad request: %s", RuErr: "Некорректный запрос: %s"}

	// 1*** - session errors
	ErrSessionNotFound = DefinedError{Code: 1001, StatusCode: http.StatusNotFound, Err: "session not found", RuErr: "Сессия не найдена"}
	ErrSessionExpired  = DefinedError{Code: 1002, StatusCode: http.StatusGone, Err: "session expired", RuErr: "Срок действия сессии истек"}
	ErrSessionIDBad    = DefinedError{Code: 1003, StatusCode: http.StatusBadRequest, Err: "invalid session id", RuErr: "Некорректный идентификатор сессии"}
	ErrSessionLimit    = DefinedError{Code: 1004, StatusCode: http.StatusTooManyRequests, Err: "too many open sessions", RuErr: "Открыто слишком много сессий"}

	// 2*** - edit state errors
	ErrNotEditing      = DefinedError{Code: 2001, StatusCode: http.StatusConflict, Err: "no node is being edited", RuErr: "Нет редактируемой ноды"}
	ErrClickUnresolved = DefinedError{Code: 2002, StatusCode: http.StatusUnprocessableEntity, Err: "click target does not belong to an interactive node", RuErr: "Клик не относится к интерактивной ноде"}
	ErrClickNoTarget   = DefinedError{Code: 2003, StatusCode: http.StatusNotFound, Err: "no view element matches selector %s", RuErr: "Нет элемента, соответствующего селектору %s"}
	ErrSelectorInvalid = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "invalid selector: %s", RuErr: "Некорректный селектор: %s"}

	// 3*** - validation errors
	ErrValidation    = DefinedError{Code: 3001, StatusCode: http.StatusUnprocessableEntity, Err: "attributes validation failed", RuErr: "Атрибуты не прошли проверку"}
	ErrUnknownKind   = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "unknown node kind: %s", RuErr: "Неизвестный вид ноды: %s"}
	ErrUnknownFormat = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "unknown document format: %s", RuErr: "Неизвестный формат документа: %s"}

	// 4*** - document errors
	ErrPositionOutOfRange = DefinedError{Code: 4001, StatusCode: http.StatusConflict, Err: "position is out of document range", RuErr: "Позиция вне документа"}
	ErrKindMismatch       = DefinedError{Code: 4002, StatusCode: http.StatusConflict, Err: "node at position is not of the edited kind", RuErr: "Нода в позиции другого вида"}
	ErrNodeNotFound       = DefinedError{Code: 4003, StatusCode: http.StatusNotFound, Err: "node not found", RuErr: "Нода не найдена"}
	ErrDocumentParse      = DefinedError{Code: 4004, StatusCode: http.StatusBadRequest, Err: "document parse failed: %s", RuErr: "Не удалось разобрать документ: %s"}
	ErrInvalidRange       = DefinedError{Code: 4005, StatusCode: http.StatusBadRequest, Err: "range can not be wrapped", RuErr: "Диапазон нельзя обернуть"}
)

func (e DefinedError) WithFormattedMessage(args ...any) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}

// WithFields возвращает копию ошибки с ошибками полей формы.
func (e DefinedError) WithFields(fields []forms.FieldError) DefinedError {
	e.Fields = fields
	return e
}

// FromDomain переводит ошибку пакетов редактора в ошибку API. Неизвестные ошибки не переводятся.
func FromDomain(err error) (DefinedError, bool) {
	var (
		de DefinedError
		ve *forms.ValidationError
	)
	switch {
	case errors.As(err, &de):
		return de, true
	case errors.As(err, &ve):
		return ErrValidation.WithFields(ve.Fields), true
	case errors.Is(err, session.ErrBadSelector):
		return ErrSelectorInvalid.WithFormattedMessage(detail(err, session.ErrBadSelector)), true
	case errors.Is(err, session.ErrNoTarget):
		return ErrClickNoTarget.WithFormattedMessage(detail(err, session.ErrNoTarget)), true
	case errors.Is(err, session.ErrUnknownKind):
		return ErrUnknownKind.WithFormattedMessage(detail(err, session.ErrUnknownKind)), true
	case errors.Is(err, editstate.ErrNotEditing):
		return ErrNotEditing, true
	case errors.Is(err, schema.ErrKindMismatch):
		return ErrKindMismatch, true
	case errors.Is(err, edtypes.ErrPositionOutOfRange):
		return ErrPositionOutOfRange, true
	case errors.Is(err, edtypes.ErrNotFound):
		return ErrNodeNotFound, true
	case errors.Is(err, edtypes.ErrNotBoundary), errors.Is(err, edtypes.ErrDifferentParents):
		return ErrInvalidRange, true
	}
	return DefinedError{}, false
}

// detail возвращает часть сообщения после сигнальной ошибки.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
