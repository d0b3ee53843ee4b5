// Package notify shows transient user-facing notices.
//
// A notice is either one-shot (Success, Error) or a handle: Begin shows a
// pending notice and Resolve replaces it with the terminal outcome.
package notify

import (
	"github.com/google/uuid"
)

// Outcome is the terminal state of a handle.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "error"
}

// Handle identifies a pending notice.
type Handle struct {
	ID      string
	Message string
}

func newHandle(msg string) Handle {
	return Handle{ID: uuid.NewString(), Message: msg}
}

// Notifier is the sink for user-facing notices.
// Resolving a handle twice, or one that was never begun, is a no-op.
type Notifier interface {
	Begin(msg string) Handle
	Resolve(h Handle, outcome Outcome, msg string)
	Success(msg string)
	Error(msg string)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) Begin(msg string) Handle         { return newHandle(msg) }
func (Nop) Resolve(Handle, Outcome, string) {}
func (Nop) Success(string)                  {}
func (Nop) Error(string)                    {}
