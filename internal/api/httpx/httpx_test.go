package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"serotonyl.ru/wingman-challenges/internal/common"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{common.NewValidationError("entries", "empty"), http.StatusBadRequest, "validation_error"},
		{fmt.Errorf("wrap: %w", common.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{common.ErrUserExists, http.StatusConflict, "already_exists"},
		{common.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{common.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts"},
		{errors.New("db is down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		code, name := StatusFor(tt.err)
		if code != tt.wantCode || name != tt.wantErr {
			t.Errorf("StatusFor(%v) = %d %q, want %d %q", tt.err, code, name, tt.wantCode, tt.wantErr)
		}
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: password authentication failed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("internal error leaked: %s", rec.Body)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "ok" {
		t.Fatalf("DecodeJSON = %v, %+v", err, dst)
	}

	for _, body := range []string{`{"name":1}`, `{"other":"x"}`, `not json`} {
		req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(req, &dst); !errors.Is(err, common.ErrValidation) {
			t.Errorf("DecodeJSON(%s) error = %v, want ErrValidation", body, err)
		}
	}
}

func TestValidateNamesFieldsByJSONTag(t *testing.T) {
	type item struct {
		ID string `json:"challengeId" validate:"required"`
	}
	type request struct {
		Items []item `json:"entries" validate:"required,min=1,dive"`
	}

	err := Validate(&request{Items: []item{{ID: ""}}})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if verr.Field != "entries[0].challengeId" {
		t.Errorf("field = %q", verr.Field)
	}

	if err := Validate(&request{Items: []item{{ID: "x"}}}); err != nil {
		t.Errorf("valid request: %v", err)
	}
}
