package store

import "time"

// DispatchEntry describes the outcome of a single device command attempt.
type DispatchEntry struct {
	Level      int
	Command    string
	Address    string
	StatusCode int
	Err        error
	SentAt     time.Time
}

// OK reports whether the device accepted the command.
func (e DispatchEntry) OK() bool {
	return e.Err == nil
}

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)
