package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptStrictSuccessSkipsFallback(t *testing.T) {
	called := false
	out, err := Try(func() ([]byte, error) { return []byte("ok"), nil }).
		OrElse(func(error) ([]byte, error) {
			called = true
			return nil, nil
		})
	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, out.FellBack)
	assert.Equal(t, []byte("ok"), out.Data)
}

func TestAttemptFallbackIsObservable(t *testing.T) {
	strictErr := &FormatError{What: "IFD0", Reason: "bad offset"}
	var seen error
	out, err := Try(func() ([]byte, error) { return nil, strictErr }).
		OrElse(func(cause error) ([]byte, error) {
			seen = cause
			return []byte("reencoded"), nil
		})
	require.NoError(t, err)
	assert.True(t, out.FellBack)
	assert.Same(t, strictErr, seen)
	assert.Equal(t, []byte("reencoded"), out.Data)

	var fe *FormatError
	assert.True(t, errors.As(out.Cause, &fe))
}

func TestAttemptBothPathsFail(t *testing.T) {
	boom := errors.New("cannot decode pixels")
	_, err := Try(func() ([]byte, error) { return nil, &EncodeError{Reason: "x"} }).
		OrElse(func(error) ([]byte, error) { return nil, boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
