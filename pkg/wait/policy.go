// Package wait implements the polling contract used by every UI lookup:
// evaluate a condition immediately, then at a fixed cadence, until it is
// satisfied or the timeout elapses.
package wait

import (
	"fmt"
	"time"
)

// Default wait values.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultInterval     = 500 * time.Millisecond
	DefaultProbeTimeout = 3 * time.Second
)

// Policy holds the defaults threaded through every wait.
type Policy struct {
	Timeout      time.Duration
	Interval     time.Duration
	ProbeTimeout time.Duration // used by non-raising readiness checks
}

// DefaultPolicy returns the suite defaults: 10s timeout, 500ms interval, 3s probe.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:      DefaultTimeout,
		Interval:     DefaultInterval,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Spec describes a single wait.
type Spec struct {
	Description string
	Timeout     time.Duration
	Interval    time.Duration
}

// Spec builds a wait specification. A zero timeout takes the policy default and
// the interval never exceeds the timeout.
func (p Policy) Spec(timeout time.Duration, description string) Spec {
	p = p.normalized()
	if timeout <= 0 {
		timeout = p.Timeout
	}
	return Spec{
		Description: description,
		Timeout:     timeout,
		Interval:    clampInterval(p.Interval, timeout),
	}
}

// Probe builds a wait specification with the policy's probe timeout.
func (p Policy) Probe(description string) Spec {
	return p.Spec(p.normalized().ProbeTimeout, description)
}

// WithInterval returns a copy of s polling at interval (clamped to the timeout).
func (s Spec) WithInterval(interval time.Duration) Spec {
	if interval > 0 {
		s.Interval = clampInterval(interval, s.Timeout)
	}
	return s
}

func (s Spec) String() string {
	desc := s.Description
	if desc == "" {
		desc = "condition"
	}
	return fmt.Sprintf("%s (timeout %s, every %s)", desc, s.Timeout, s.Interval)
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	if p.Interval <= 0 {
		p.Interval = d.Interval
	}
	if p.ProbeTimeout <= 0 {
		p.ProbeTimeout = d.ProbeTimeout
	}
	return p
}

func clampInterval(interval, timeout time.Duration) time.Duration {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout > 0 && interval > timeout {
		return timeout
	}
	return interval
}
