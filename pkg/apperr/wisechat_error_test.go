package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("chat"), CodeNotFound, http.StatusNotFound},
		{"missing field", MissingField("content"), CodeMissingField, http.StatusBadRequest},
		{"unauthorized default", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
		{"database", DatabaseError("insert message", cause), CodeDatabaseError, http.StatusInternalServerError},
		{"external", ExternalError("openai", cause), CodeExternalError, http.StatusBadGateway},
		{"timeout", Timeout("completion"), CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.HTTPStatus() != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", tt.err.HTTPStatus(), tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("service: %w", DatabaseError("update chat", cause))

	if !IsAppError(err) {
		t.Fatal("IsAppError() = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := GetHTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus() = %d, want 500", got)
	}
	if !HasCode(err, CodeDatabaseError) {
		t.Error("HasCode(DATABASE_ERROR) = false, want true")
	}
}

func TestAsAppErrorFallback(t *testing.T) {
	appErr := AsAppError(errors.New("plain"))
	if appErr.Code != CodeInternalError {
		t.Errorf("Code = %s, want %s", appErr.Code, CodeInternalError)
	}
	if GetHTTPStatus(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("plain error should map to 500")
	}
}

func TestMissingFieldDetail(t *testing.T) {
	err := MissingField("content")
	if err.Details["field"] != "content" {
		t.Errorf("Details[field] = %v, want content", err.Details["field"])
	}
}
