package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestBreakerStartsClosed(t *testing.T) {
	b := New("audit")
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "audit", b.Name())
	assert.True(t, b.Allow())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New("audit", WithFailureThreshold(3))

	assert.False(t, b.RecordFailure())
	assert.False(t, b.RecordFailure())
	assert.True(t, b.RecordFailure())
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestSuccessResetsFailureRun(t *testing.T) {
	b := New("audit", WithFailureThreshold(2))

	b.RecordFailure()
	assert.False(t, b.RecordSuccess())
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	b := New("audit", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.now))

	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.t = clock.t.Add(2 * time.Minute)
	assert.True(t, b.Allow(), "first call after cooldown is a trial call")
	assert.False(t, b.Allow(), "only one trial call at a time")

	t.Run("failed trial call reopens", func(t *testing.T) {
		assert.False(t, b.RecordFailure())
		assert.Equal(t, StateOpen, b.State())
		assert.False(t, b.Allow())
	})

	t.Run("successful trial call closes", func(t *testing.T) {
		clock.t = clock.t.Add(2 * time.Minute)
		assert.True(t, b.Allow())
		assert.True(t, b.RecordSuccess())
		assert.Equal(t, StateClosed, b.State())
		assert.True(t, b.Allow())
	})
}

func TestReset(t *testing.T) {
	b := New("audit", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}
