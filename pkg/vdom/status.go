package vdom

import "fmt"

// Status is the diff outcome of a node.
type Status uint8

const (
	StatusAppend     Status = iota // New node with no previous counterpart
	StatusDelete                   // Remove from the platform tree
	StatusNormal                   // Unchanged
	StatusUpdate                   // Same identity, attributes changed
	StatusMove                     // Same identity, different position
	StatusMoveUpdate               // Different position and attributes changed
)

var statusNames = [...]string{
	StatusAppend:     "APPEND",
	StatusDelete:     "DELETE",
	StatusNormal:     "NORMAL",
	StatusUpdate:     "UPDATE",
	StatusMove:       "MOVE",
	StatusMoveUpdate: "MOVEUPDATE",
}

// String returns the upper-case status name.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("vdom: unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Changed reports whether the status carries attribute changes.
func (s Status) Changed() bool {
	return s == StatusUpdate || s == StatusMoveUpdate
}
