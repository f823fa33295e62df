package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_OK(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(signupRequest{Email: "alice@example.com", Password: "password123"}))
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	err = v.Validate(signupRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	var fieldErrs FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")
	assert.Equal(t, "password must be at least 8 characters in length", fieldErrs["password"])
}

func TestFieldErrors_ErrorIsStable(t *testing.T) {
	fe := FieldErrors{"b": "second", "a": "first"}
	assert.Equal(t, "first; second", fe.Error())
}
