package apperror

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByKind(t *testing.T) {
	sentinel := New(KindAccountLocked, "account locked")
	detailed := sentinel.WithMessage("account locked for 15 minutes").WithRetryAfter(15 * time.Minute)

	assert.True(t, errors.Is(detailed, sentinel))
	assert.False(t, errors.Is(detailed, New(KindInvalidCredentials, "invalid credentials")))
	assert.Equal(t, "account locked", sentinel.Message, "copies must not mutate the sentinel")
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", New(KindNotFound, "user not found"))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "failed to load user", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user: connection refused", err.Error())

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindInternal, appErr.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "account_locked", KindAccountLocked.String())
	assert.Equal(t, "unknown", Kind(200).String())
}
