package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "missing")))
	assert.Equal(t, KindValidation, KindOf(Newf(KindValidation, "bad %s", "input")))

	// Wrapped errors keep their kind through fmt wrapping
	err := fmt.Errorf("handler: %w", New(KindConflict, "bad state"))
	assert.Equal(t, KindConflict, KindOf(err))

	// Unknown errors default to persistence
	assert.Equal(t, KindPersistence, KindOf(errors.New("boom")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindPersistence, "failed to load session", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load session")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(New(KindNotFound, "x")))
	assert.True(t, IsValidation(New(KindValidation, "x")))
	assert.True(t, IsConflict(New(KindConflict, "x")))
	assert.False(t, IsNotFound(New(KindConflict, "x")))
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, KindUnavailable.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindPersistence.HTTPStatus())
}
