// Package httpx — общие помощники HTTP-слоя: JSON-ответы, разбор тела,
// валидация DTO и перевод ошибок домена в HTTP-статусы.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wingman-challenges/internal/common"
)

// MaxBodyBytes — предел размера тела запроса.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator — валидатор, который называет поля по json-тегам.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON пишет v как JSON со статусом status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка записи JSON-ответа")
	}
}

// StatusFor возвращает HTTP-статус и код ошибки для err.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrUserExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too_many_attempts"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// IsClientError сообщает, что ошибка вызвана запросом, а не сервером.
func IsClientError(err error) bool {
	status, _ := StatusFor(err)
	return status < http.StatusInternalServerError
}

// WriteError отвечает ошибкой. Внутренние детали 5xx клиенту не отдаются.
func WriteError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	WriteJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// DecodeJSON читает тело запроса в dst. Неизвестные поля запрещены.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return common.NewValidationError(typeErr.Field, fmt.Sprintf("ожидается %s", typeErr.Type))
		}
		return common.NewValidationError("body", "некорректный JSON: "+err.Error())
	}
	return nil
}

// Validate проверяет теги validate у DTO и переводит первую ошибку в ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		// Отрезаем имя корневой структуры: "submitRequest.entries[0].challengeId" → "entries[0].challengeId"
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return common.NewValidationError(field, "не прошло правило "+fe.Tag())
	}
	return common.NewValidationError("", err.Error())
}
