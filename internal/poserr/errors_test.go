package poserr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	err := Connection(cause, "pool for %q unavailable", "mgdb")
	assert.True(t, IsKind(err, KindConnection))
	assert.False(t, IsKind(err, KindQuery))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `pool for "mgdb" unavailable`)
	assert.Contains(t, err.Error(), "refused")
}

func TestValidationHasNoCause(t *testing.T) {
	err := Validation("cash received is less than total")
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "cash received is less than total", err.Error())
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	inner := Query(errors.New("deadlock"), "sale could not be stored")
	wrapped := fmt.Errorf("checkout: %w", inner)
	assert.True(t, IsKind(wrapped, KindQuery))
}

func TestIsKindOnForeignError(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain"), KindQuery))
	assert.False(t, IsKind(nil, KindQuery))
}
