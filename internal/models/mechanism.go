package models

import "fmt"

// Mechanism names the readiness strategy the dispatcher waits with.
type Mechanism string

const (
	MechanismEpoll  Mechanism = "epoll"
	MechanismSelect Mechanism = "select"

	// Accepted names without an implementation.
	MechanismSequential Mechanism = "sequential"
	MechanismPoll       Mechanism = "poll"
)

func ParseMechanism(s string) (Mechanism, error) {
	switch Mechanism(s) {
	case MechanismEpoll, MechanismSelect, MechanismSequential, MechanismPoll:
		return Mechanism(s), nil
	default:
		return "", fmt.Errorf("invalid wait mechanism: %q", s)
	}
}

// Supported reports whether the mechanism has a multiplexer implementation.
func (m Mechanism) Supported() bool {
	return m == MechanismEpoll || m == MechanismSelect
}

func (m Mechanism) String() string {
	return string(m)
}
