package ptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTo_ReturnsCopy(t *testing.T) {
	v := 3
	p := To(v)
	v = 4
	assert.Equal(t, 3, *p)
}

func TestDeref(t *testing.T) {
	assert.True(t, Deref(To(true), false))
	assert.False(t, Deref[bool](nil, false))
	assert.Equal(t, "fallback", Deref[string](nil, "fallback"))
}
