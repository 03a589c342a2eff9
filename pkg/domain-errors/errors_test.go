package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotProofOwner, "caller does not own this claim")
	assert.True(t, HasCode(err, CodeNotProofOwner))
	assert.False(t, HasCode(err, CodeClaimNotExist))
	assert.False(t, HasCode(errors.New("plain"), CodeNotProofOwner))
	assert.False(t, HasCode(nil, CodeNotProofOwner))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "claim store failure")

	assert.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "claim store failure")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeThroughFmtWrap(t *testing.T) {
	inner := New(CodeClaimNotExist, "fingerprint is not claimed")
	outer := fmt.Errorf("handling request: %w", inner)
	assert.True(t, HasCode(outer, CodeClaimNotExist))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeProofTooLong, CodeOf(New(CodeProofTooLong, "too long")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("uncoded")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeProofTooLong:       http.StatusBadRequest,
		CodeProofAlreadyExists: http.StatusConflict,
		CodeClaimNotExist:      http.StatusNotFound,
		CodeNotProofOwner:      http.StatusForbidden,
		CodeInvalidInput:       http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
