package gitclone

import (
	"testing"
	"time"
)

func TestETAThrottle(t *testing.T) {
	base := time.Unix(1700000000, 0)
	c := &etaClock{}

	// first sample only primes the clock
	if _, ok := c.estimate(10, base); ok {
		t.Error("first sample must not produce an estimate")
	}

	// too soon, even with progress
	if _, ok := c.estimate(20, base.Add(1*time.Second)); ok {
		t.Error("recalculation before the interval must be suppressed")
	}

	// enough time but no progress
	if _, ok := c.estimate(10, base.Add(5*time.Second)); ok {
		t.Error("no progress must mean no new estimate")
	}

	// 10% -> 30% over 4s: remaining 70% at 0.2s per percent = 14s
	eta, ok := c.estimate(30, base.Add(4*time.Second))
	if !ok {
		t.Fatal("expected an estimate")
	}
	if eta != "00:14" {
		t.Errorf("expected 00:14, got %q", eta)
	}

	// the accepted sample resets the throttle window
	if _, ok := c.estimate(40, base.Add(5*time.Second)); ok {
		t.Error("recalculation 1s after the last accepted sample must be suppressed")
	}
}
