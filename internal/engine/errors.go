package engine

import "fmt"

// ConfigError reports an invalid rule definition. Callers must treat it as
// "deny the action": a broken rate limit fails closed, not open.
type ConfigError struct {
	Rule   string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("rate limit config: %s", e.Reason)
	}
	return fmt.Sprintf("rate limit config: rule %q: %s", e.Rule, e.Reason)
}
