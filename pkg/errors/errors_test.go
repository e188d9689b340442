package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeConflict,
				Message: "slot capacity exceeded",
			},
			expected: "CONFLICT: slot capacity exceeded",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"NotFound", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"InvalidInput", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest},
		{"Conflict", Conflict("slot full"), CodeConflict, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
		{"Timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"Unavailable", Unavailable("booking slot"), CodeUnavailable, http.StatusServiceUnavailable},
		{"Invariant", Invariant("incomplete draft"), CodeInvariant, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Conflict("slot full"), CodeConflict) {
		t.Error("HasCode should match an AppError's own code")
	}
	if HasCode(Conflict("slot full"), CodeInternal) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("HasCode should be false for non-AppErrors")
	}
	if HasCode(fmt.Errorf("wrapped: %w", Conflict("slot full")), CodeConflict) {
		t.Error("HasCode does not unwrap; callers pass AppErrors through unchanged")
	}
}

func TestAsAppError(t *testing.T) {
	conflict := Conflict("slot full")
	if AsAppError(conflict) != conflict {
		t.Error("AsAppError should return the same AppError")
	}

	converted := AsAppError(errors.New("plain"))
	if converted.Code != CodeInternal {
		t.Errorf("converted code = %s, want %s", converted.Code, CodeInternal)
	}
}
