// Package common — errors.go определяет ошибки, общие для всех модулей сервиса.
// Обработчики различают их через errors.Is и отдают клиенту нужный HTTP-статус.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — некорректные входные данные (запрос отклоняется целиком)
	ErrValidation = errors.New("некорректные данные")
	// ErrUserNotFound — у пользователя нет сохранённого состояния челленджей
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrUserExists — состояние пользователя уже создано
	ErrUserExists = errors.New("пользователь уже существует")
	// ErrUnauthorized — неверный админ-токен
	ErrUnauthorized = errors.New("нет доступа")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)

// ValidationError описывает, какое поле не прошло проверку и почему.
// errors.Is(err, ErrValidation) == true для любого *ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError создаёт ошибку валидации поля.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Is позволяет сравнивать ошибку с ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
