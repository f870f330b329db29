package skills

import (
	"fmt"
	"strings"
)

// NotFoundError reports a skill name with no registration, with close matches
// when any exist.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("skill %q not found", e.Name)
	}
	return fmt.Sprintf("skill %q not found, did you mean: %s", e.Name, strings.Join(e.Suggestions, ", "))
}

// UnavailableError reports a registered skill that cannot run right now.
type UnavailableError struct {
	Name   string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("skill %q unavailable: %s", e.Name, e.Reason)
}
