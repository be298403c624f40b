package ratelimiter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPerKey(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now))

	assert.True(t, l.Allow("a", now.Add(time.Second)))
	assert.Equal(t, time.Second, l.RetryAfter())
}

func TestNilLimiterAllows(t *testing.T) {
	l := New(0, 1, 0)
	assert.Nil(t, l)
	assert.True(t, l.Allow("a", time.Now()))
	assert.Zero(t, l.RetryAfter())
}

func TestEmptyKeyIsNotLimited(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("  ", now))
	}
	assert.Zero(t, l.Len())
}

func TestIdleBucketsAreSwept(t *testing.T) {
	l := New(100, 100, time.Minute)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("stale", start)

	later := start.Add(time.Hour)
	for i := 0; i < sweepEvery; i++ {
		l.Allow(fmt.Sprintf("k%d", i%10), later)
	}
	assert.Equal(t, 10, l.Len())
}
