package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", ValidationError("bad input"), http.StatusBadRequest},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"forbidden", ForbiddenError("wrong password"), http.StatusForbidden},
		{"conflict", ConflictError("full"), http.StatusConflict},
		{"internal", InternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	plain := NotFoundError("Session not found")
	assert.Equal(t, "not_found: Session not found", plain.Error())

	wrapped := InternalError("registry failed", fmt.Errorf("oops"))
	assert.Equal(t, "internal: registry failed: oops", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError("wrapper", cause)

	assert.ErrorIs(t, err, cause)
}

func TestToResponse_OnlyExposesMessage(t *testing.T) {
	err := ForbiddenError("Invalid password").WithField("session_id", "abc12345")

	resp := err.ToResponse()
	assert.Equal(t, "Invalid password", resp.Error)
}

func TestAsStructuredError(t *testing.T) {
	structured := ConflictError("Session is full")
	assert.Same(t, structured, AsStructuredError(structured))

	plain := errors.New("something broke")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)

	assert.Nil(t, AsStructuredError(nil))
}

func TestWithField(t *testing.T) {
	err := ValidationError("missing field").
		WithField("field", "steam_id").
		WithField("path", "/api/sessions")

	assert.Equal(t, "steam_id", err.Context["field"])
	assert.Equal(t, "/api/sessions", err.Context["path"])
}
