package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"exampulse/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCode(t *testing.T) {
	base := ConfigInvalid("PORT is required")
	wrapped := Wrap(base, "failed to load server configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "failed to load server configuration: PORT is required", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrap_DerivesCodeFromDomainErrors(t *testing.T) {
	assert.Equal(t, CodePrecondition, GetCode(Wrap(core.NewInsufficientDataError(1, 2), "correlate")))
	assert.Equal(t, CodeInvalidInput, GetCode(Wrap(fmt.Errorf("%w: x", core.ErrUnknownValue), "filter")))
	assert.Equal(t, CodeLoadFailed, GetCode(Wrap(core.NewLoadError(stderrors.New("timeout")), "load")))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(stderrors.New("boom"), "x")))
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(core.ErrLengthMismatch))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad filter")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(LoadFailed("fixture", stderrors.New("x"))))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("session")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("boom")))
}
