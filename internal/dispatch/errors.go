package dispatch

import (
	"errors"
	"fmt"
)

// Классы ошибок run.
var (
	// ErrTransport — запрос к API не выполнен (сеть, таймаут, отмена).
	ErrTransport = errors.New("transport error")

	// ErrHTTPStatus — API вернул неуспешный код.
	ErrHTTPStatus = errors.New("unsuccessful http status")

	// ErrMalformedResponse — успешный код, но тело пустое или не декодируется.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrBatchErrors — create вернул ошибки в теле ответа.
	ErrBatchErrors = errors.New("batch reported errors")

	// ErrMaxIterationsExceeded — run превысил границу итераций.
	ErrMaxIterationsExceeded = errors.New("max iterations exceeded")

	// ErrEmptyBody — тело успешного ответа пустое.
	ErrEmptyBody = errors.New("empty response body")

	// ErrNullBody — тело успешного ответа — JSON null.
	ErrNullBody = errors.New("null response body")
)

// StepError — ошибка шага create или send.
//
// Error() возвращает готовое сообщение для Reporter.
// Kind — один из классов выше, Err — исходная ошибка (если есть).
type StepError struct {
	Path    string
	Kind    error
	Message string
	Err     error

	// Created — сколько анкет create успел создать до ошибок в пакете.
	// Заполняется только для ErrBatchErrors.
	Created int
}

// Error реализует интерфейс error.
func (e *StepError) Error() string {
	return e.Message
}

// Unwrap позволяет errors.Is/As видеть и класс, и исходную ошибку.
func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// transportError — сбой транспорта на path.
func transportError(path string, err error) *StepError {
	return &StepError{
		Path:    path,
		Kind:    ErrTransport,
		Message: fmt.Sprintf("POST to '%s' - transport error: %v.", path, err),
		Err:     err,
	}
}

// statusError — неуспешный код ответа.
func statusError(path, status, body string) *StepError {
	return &StepError{
		Path:    path,
		Kind:    ErrHTTPStatus,
		Message: fmt.Sprintf("POST to '%s' - '%s': '%s'.", path, status, body),
	}
}
