package models

// SlotState is the lifecycle state of one pool position.
type SlotState string

const (
	// SlotIdle - created, no worker launched yet
	SlotIdle SlotState = "idle"
	// SlotRunning - a worker is computing the slot's term
	SlotRunning SlotState = "running"
	// SlotReaping - output delivered, waiting for the process to exit
	SlotReaping SlotState = "reaping"
	// SlotFailed - the last generation could not be spawned or delivered no result
	SlotFailed SlotState = "failed"
	// SlotRetired - no term left, channel closed, never respawned
	SlotRetired SlotState = "retired"
)

// SlotStatus is a snapshot of one slot.
type SlotStatus struct {
	Index       int
	State       SlotState
	Term        int
	Generations int
	Error       error
}
