// Пакет stack_error накапливает след ошибки: место каждого перехвата и контекст операции редактора
// (сессия, вид ноды, позиция), чтобы обработчик API записал все в один лог.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/labstack/echo/v4"
)

type TrackerError struct {
	Context  map[string]any
	ErrStack []string
	cause    error
}

// Track добавляет к ошибке место вызова и пары ключ-значение контекста. nil не оборачивается.
func Track(err error, kv ...any) error {
	if err == nil {
		return nil
	}
	te := trackStack(err)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			te.AddContext(k, kv[i+1])
		}
	}
	return te
}

// TrackErrorStack добавляет к ошибке место вызова.
func TrackErrorStack(err error) *TrackerError {
	return trackStack(err)
}

func trackStack(err error) *TrackerError {
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, callerFile(3))
		return te
	}

	newTe := &TrackerError{
		Context: make(map[string]any),
		cause:   err,
	}
	newTe.ErrStack = append(newTe.ErrStack, callerFile(3))
	return newTe
}

// AddContext добавляет значение контекста. Первое значение ключа сохраняется.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// LogAttrs возвращает атрибуты лога: контекст в порядке ключей и след.
func (te *TrackerError) LogAttrs() []any {
	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		res = append(res, slog.Any(k, te.Context[k]))
	}
	return append(res, slog.Any("trace", te.ErrStack))
}

// GetError пишет ошибку в лог с контекстом запроса.
func GetError(c echo.Context, err error) {
	var trackerError *TrackerError
	var attrs []any

	if errors.As(err, &trackerError) {
		attrs = trackerError.LogAttrs()
	}
	attrs = append(attrs, slog.String("err", err.Error()))

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}

	slog.With(attrs...).Error("Editor API error")
}

func callerFile(skip int) string {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	_, file := filepath.Split(path)
	return fmt.Sprintf("%s:%d", file, no)
}
