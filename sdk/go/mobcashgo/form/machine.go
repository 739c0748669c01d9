// Package form implements the create and edit forms of the console: local
// validation, the proof/image attachment, and the submission state machine
// shared by every form.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the position of a form in its submission cycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// ErrSubmitInProgress is returned when a submit (or an upload) is attempted
// while one is already running. The attempt has no effect.
var ErrSubmitInProgress = errors.New("a submission is already in progress")

// ValidationError is a local rejection of the form content. No request was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Machine drives idle -> validating -> submitting -> success | error.
// A failed validation returns to idle. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	err      error
	onChange func(State)
}

// OnChange registers fn to be called after every transition. fn runs with the
// machine locked and must not call back into it.
func (m *Machine) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns the current state; the zero Machine is idle.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Err returns the error of the last failed validation or submission.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Busy reports whether a submission is between validation and its outcome.
func (m *Machine) Busy() bool {
	s := m.State()
	return s == StateValidating || s == StateSubmitting
}

// Submit runs validate and, if it passes, submit. A call made while another
// one is running returns ErrSubmitInProgress without doing anything.
func (m *Machine) Submit(ctx context.Context, validate func() error, submit func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.state == StateValidating || m.state == StateSubmitting {
		m.mu.Unlock()
		return ErrSubmitInProgress
	}
	m.setLocked(StateValidating, nil)
	m.mu.Unlock()

	// a panicking callback must not leave the form busy forever
	defer func() {
		if r := recover(); r != nil {
			m.set(StateError, fmt.Errorf("submit panicked: %v", r))
			panic(r)
		}
	}()

	if err := validate(); err != nil {
		m.set(StateIdle, err)
		return err
	}

	m.set(StateSubmitting, nil)
	if err := submit(ctx); err != nil {
		m.set(StateError, err)
		return err
	}

	m.set(StateSuccess, nil)
	return nil
}

// Reset returns the machine to idle unless a submission is running.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateValidating || m.state == StateSubmitting {
		return
	}
	m.setLocked(StateIdle, nil)
}

func (m *Machine) set(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(s, err)
}

func (m *Machine) setLocked(s State, err error) {
	m.state = s
	m.err = err
	if m.onChange != nil {
		m.onChange(s)
	}
}
