package domain

import "fmt"

// Status is the result of a single tick.
// The zero value is StatusInvalid, meaning the node has no active run.
type Status uint8

const (
	// StatusInvalid marks a context with no active run (initial and post-termination state).
	StatusInvalid Status = iota
	// StatusRunning means the node is in progress and must be ticked again.
	StatusRunning
	// StatusSuccess is terminal.
	StatusSuccess
	// StatusFailed is terminal.
	StatusFailed
)

var statusNames = [...]string{
	StatusInvalid: "invalid",
	StatusRunning: "running",
	StatusSuccess: "success",
	StatusFailed:  "failed",
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// IsTerminal reports whether s ends a run.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status %d", uint8(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a status name into a Status.
// "failure" and "ok" are accepted as aliases of "failed" and "success".
func ParseStatus(name string) (Status, error) {
	switch name {
	case "invalid", "":
		return StatusInvalid, nil
	case "running":
		return StatusRunning, nil
	case "success", "ok":
		return StatusSuccess, nil
	case "failed", "failure":
		return StatusFailed, nil
	}
	return StatusInvalid, fmt.Errorf("unknown status %q", name)
}
