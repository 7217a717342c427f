// Package session models the client's authentication state as a pure
// reducer over login, logout, and expiry actions.
package session

import (
	"time"

	"github.com/studyhallco/studyhall/pkg/state"
)

// Status reports where the client stands with the server.
type Status int

const (
	StatusAnonymous Status = iota
	StatusActive
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// State is the authentication snapshot.
type State struct {
	Status  Status
	Learner string
	Server  string
	Since   time.Time
}

// LoggedIn records a successful login against a server.
type LoggedIn struct {
	state.ActionBase

	Learner string
	Server  string
	At      time.Time
}

// LoggedOut clears the session.
type LoggedOut struct {
	state.ActionBase
}

// Expired marks an active session as expired, keeping the learner so the
// UI can prompt a re-login.
type Expired struct {
	state.ActionBase
}

// Reduce is the session reducer.
func Reduce(s State, a state.Action) State {
	switch a := a.(type) {
	case LoggedIn:
		return State{
			Status:  StatusActive,
			Learner: a.Learner,
			Server:  a.Server,
			Since:   a.At,
		}
	case LoggedOut:
		return State{Status: StatusAnonymous}
	case Expired:
		if s.Status != StatusActive {
			return s
		}
		s.Status = StatusExpired
		return s
	}
	return s
}

// New returns a session store seeded anonymous.
func New() *state.Store[State] {
	return state.New(State{Status: StatusAnonymous}, Reduce)
}

// Active reports whether the snapshot carries a usable session.
func Active(s State) bool {
	return s.Status == StatusActive
}
