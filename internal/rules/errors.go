package rules

import "fmt"

// ConfigurationError reports a malformed configuration entry.
// Index is the entry position in the configured list (0-based).
type ConfigurationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("deprecated method entry #%d: %s: %s", e.Index+1, e.Field, e.Reason)
}
