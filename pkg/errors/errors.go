// Package errors defines the typed errors shared by the dispatcher, the
// services and the HTTP layer. Every error type has a constructor and an
// Is* predicate that sees through wrapping.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid run configuration. It is detected
// before any worker is spawned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid argument '%s': %s", e.Field, e.Reason)
}

func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// UnsupportedMechanismError is returned for wait mechanisms that are known by
// name but have no implementation.
type UnsupportedMechanismError struct {
	Mechanism string
}

func NewUnsupportedMechanismError(mechanism string) *UnsupportedMechanismError {
	return &UnsupportedMechanismError{Mechanism: mechanism}
}

func (e *UnsupportedMechanismError) Error() string {
	return fmt.Sprintf("%s mechanism is not supported yet.", e.Mechanism)
}

func IsUnsupportedMechanismError(err error) bool {
	var e *UnsupportedMechanismError
	return errors.As(err, &e)
}

// ChannelError reports a failure to create the pipe carrying a worker result.
type ChannelError struct {
	Slot int
	Term int
	Err  error
}

func NewChannelError(slot, term int, err error) *ChannelError {
	return &ChannelError{Slot: slot, Term: term, Err: err}
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("error when piping worker idx: %d term: %d: %v", e.Slot, e.Term, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func IsChannelError(err error) bool {
	var e *ChannelError
	return errors.As(err, &e)
}

// SpawnError reports a failure to start a worker process.
type SpawnError struct {
	Slot int
	Term int
	Err  error
}

func NewSpawnError(slot, term int, err error) *SpawnError {
	return &SpawnError{Slot: slot, Term: term, Err: err}
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("error when forking worker idx: %d term: %d: %v", e.Slot, e.Term, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func IsSpawnError(err error) bool {
	var e *SpawnError
	return errors.As(err, &e)
}

// EmptyResultError is returned when a worker closed its output without
// writing a value.
type EmptyResultError struct {
	Slot int
	Term int
}

func NewEmptyResultError(slot, term int) *EmptyResultError {
	return &EmptyResultError{Slot: slot, Term: term}
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("worker %d closed its output without a result for term %d", e.Slot, e.Term)
}

func IsEmptyResultError(err error) bool {
	var e *EmptyResultError
	return errors.As(err, &e)
}

// ReadError reports a failed read on a worker channel.
type ReadError struct {
	Slot int
	Term int
	Err  error
}

func NewReadError(slot, term int, err error) *ReadError {
	return &ReadError{Slot: slot, Term: term, Err: err}
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read result of worker %d term %d: %v", e.Slot, e.Term, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func IsReadError(err error) bool {
	var e *ReadError
	return errors.As(err, &e)
}

// ParseError is returned when a worker payload is not a decimal float.
type ParseError struct {
	Slot    int
	Term    int
	Payload string
	Err     error
}

func NewParseError(slot, term int, payload string, err error) *ParseError {
	return &ParseError{Slot: slot, Term: term, Payload: payload, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("worker %d term %d produced a malformed result %q: %v", e.Slot, e.Term, e.Payload, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// WorkerExitError is returned when a worker process exited unsuccessfully.
type WorkerExitError struct {
	Slot int
	Term int
	Err  error
}

func NewWorkerExitError(slot, term int, err error) *WorkerExitError {
	return &WorkerExitError{Slot: slot, Term: term, Err: err}
}

func (e *WorkerExitError) Error() string {
	return fmt.Sprintf("worker %d term %d exited with error: %v", e.Slot, e.Term, e.Err)
}

func (e *WorkerExitError) Unwrap() error { return e.Err }

func IsWorkerExitError(err error) bool {
	var e *WorkerExitError
	return errors.As(err, &e)
}

// IncompleteRunError is returned by a run that settled every term but could
// not fold all of them.
type IncompleteRunError struct {
	Failed int
	Total  int
	Err    error
}

func NewIncompleteRunError(failed, total int, err error) *IncompleteRunError {
	return &IncompleteRunError{Failed: failed, Total: total, Err: err}
}

func (e *IncompleteRunError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d terms failed", e.Failed, e.Total)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *IncompleteRunError) Unwrap() error { return e.Err }

func IsIncompleteRunError(err error) bool {
	var e *IncompleteRunError
	return errors.As(err, &e)
}

// RunNotFoundError is returned when a run id is unknown to the store.
type RunNotFoundError struct {
	ID string
}

func NewRunNotFoundError(id string) *RunNotFoundError {
	return &RunNotFoundError{ID: id}
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run %s not found", e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *RunNotFoundError
	return errors.As(err, &e)
}
