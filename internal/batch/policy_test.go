package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoTolerance(t *testing.T) {
	p := NoTolerance()
	assert.Equal(t, 0, p.RetryLimit())
	assert.False(t, p.SkipsEnabled())
	assert.False(t, p.CanSkip(0))
}

func TestSkipPolicy(t *testing.T) {
	p := SkipPolicy(2)
	assert.True(t, p.CanSkip(0))
	assert.True(t, p.CanSkip(1))
	assert.False(t, p.CanSkip(2))
}

func TestSkipPolicy_ZeroLimit(t *testing.T) {
	p := SkipPolicy(0)
	assert.True(t, p.SkipsEnabled())
	assert.False(t, p.CanSkip(0))
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy(3)
	assert.Equal(t, 3, p.RetryLimit())
	assert.False(t, p.CanSkip(0))
}

func TestRetryThenSkip(t *testing.T) {
	p := RetryThenSkip(2, 4)
	assert.Equal(t, 2, p.RetryLimit())
	assert.True(t, p.CanSkip(3))
	assert.False(t, p.CanSkip(4))
}
