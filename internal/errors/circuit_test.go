package errors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TS01: State Transitions
// ============================================================================

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker("embed")

	assert.Equal(t, "embed", cb.Name())
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_OpensAtFailureThreshold(t *testing.T) {
	// Given: a breaker that opens after 3 failures
	cb := NewCircuitBreaker("embed", WithMaxFailures(3))

	// When: the backend fails twice
	cb.RecordFailure()
	cb.RecordFailure()

	// Then: still closed, requests allowed
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())

	// When: a third failure arrives
	cb.RecordFailure()

	// Then: circuit opens and requests are rejected
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
	assert.Equal(t, 3, cb.Failures())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker("embed", WithMaxFailures(3))

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	assert.Equal(t, 0, cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

// ============================================================================
// TS02: Recovery Probing
// ============================================================================

func TestCircuitBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	// Given: an open circuit with a short reset timeout
	cb := NewCircuitBreaker("embed",
		WithMaxFailures(1),
		WithResetTimeout(10*time.Millisecond))
	cb.RecordFailure()
	assert.False(t, cb.Allow())

	// When: the reset timeout elapses
	time.Sleep(20 * time.Millisecond)

	// Then: the circuit admits a probe request
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_ProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("embed",
		WithMaxFailures(1),
		WithResetTimeout(10*time.Millisecond))
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.Allow(), "probe should be admitted")

	// The probe fails; circuit snaps back open
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_ProbeSuccessCloses(t *testing.T) {
	cb := NewCircuitBreaker("embed",
		WithMaxFailures(1),
		WithResetTimeout(10*time.Millisecond))
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	cb.RecordSuccess()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
