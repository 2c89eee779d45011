package chat

import "time"

// TimeoutDecision is the outcome of evaluating the inactivity policy.
type TimeoutDecision int

const (
	// TimeoutNone: within the active window, route normally.
	TimeoutNone TimeoutDecision = iota
	// TimeoutWarn: past the soft limit. The turn is intercepted with a
	// warning and the visitor's message is not routed.
	TimeoutWarn
	// TimeoutReset: past the soft limit plus the warning grace. The
	// session is discarded and the conversation restarts from the
	// greeting gate.
	TimeoutReset
)

// TimeoutPolicy is the two-tier inactivity rule: a soft timeout that warns,
// and a grace window after it before the session is thrown away.
type TimeoutPolicy struct {
	Timeout time.Duration
	Warning time.Duration
}

// DefaultTimeoutPolicy mirrors the product default of 5 minutes plus a
// 2 minute warning window.
func DefaultTimeoutPolicy() TimeoutPolicy {
	return TimeoutPolicy{Timeout: 5 * time.Minute, Warning: 2 * time.Minute}
}

// Evaluate decides what to do with a turn given the previous turn's
// timestamp (epoch millis, zero on a first turn, which never times out).
func (p TimeoutPolicy) Evaluate(lastInteraction int64, now time.Time) TimeoutDecision {
	if lastInteraction <= 0 {
		return TimeoutNone
	}
	elapsed := now.Sub(time.UnixMilli(lastInteraction))
	switch {
	case elapsed > p.Timeout+p.Warning:
		return TimeoutReset
	case elapsed > p.Timeout:
		return TimeoutWarn
	default:
		return TimeoutNone
	}
}

// RemainingGrace reports how long the visitor has left inside the warning
// window before the session resets.
func (p TimeoutPolicy) RemainingGrace(lastInteraction int64, now time.Time) time.Duration {
	deadline := time.UnixMilli(lastInteraction).Add(p.Timeout + p.Warning)
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
