package exchange

import (
	"errors"
	"fmt"
)

// ErrInfeasible reports that no valid total assignment exists for the
// roster. It is only returned once infeasibility is proven; a run of
// failed random retries is never enough.
var ErrInfeasible = errors.New("exchange: no valid assignment exists for this roster")

// ConfigError describes malformed or self-contradictory roster input:
// duplicate participants, unknown names, a participant partnered with
// themself, or forced pairs that break the rules. It is always raised
// before any drawing starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "exchange: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err (or anything it wraps) is a roster
// configuration problem rather than a solver verdict.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
