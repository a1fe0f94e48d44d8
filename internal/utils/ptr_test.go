package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStringOrNil(t *testing.T) {
	assert.Nil(t, StringOrNil("   "))
	assert.Equal(t, "court 3", *StringOrNil(" court 3 "))
}

func TestSameID(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	aCopy := a

	assert.True(t, SameID(nil, nil))
	assert.True(t, SameID(&a, &aCopy))
	assert.False(t, SameID(&a, &b))
	assert.False(t, SameID(&a, nil))
	assert.False(t, SameID(nil, &b))
	assert.Equal(t, 0, OrZero[int](nil))
}
