// Package apperr задаёт таксономию ошибок сервиса: валидация, «не найдено»,
// конфликт уникальности и сбой хранилища. Обработчики переводят эти типы
// в HTTP-статусы в одном месте (handlers.RespondError).
package apperr

import "fmt"

// ValidationError — отсутствует или некорректно обязательное поле запроса.
// Сообщение показывается клиенту как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation создает ValidationError с форматированным сообщением.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError — запрошенная сущность отсутствует. Kind — машинное имя
// ситуации (например "no-signals-for-type"), Message — текст для клиента.
type NotFoundError struct {
	Kind    string
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound создает NotFoundError заданного вида.
func NotFound(kind, format string, args ...any) *NotFoundError {
	return &NotFoundError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ConflictError — нарушение уникального ключа (имя+тип сигнала, код проекта,
// пара устройство+сигнал). Клиент должен повторить запрос с другими данными.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict создает ConflictError с форматированным сообщением.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// PersistenceError — неожиданный сбой хранилища. Наружу уходит общий текст,
// подробности остаются в журнале сервера.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence оборачивает ошибку хранилища с именем операции.
func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
