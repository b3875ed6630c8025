package mapping

import (
	"errors"
	"fmt"

	"github.com/heartmarshall/entitymap/internal/domain"
)

// Engine faults. Configuration faults are programmer errors and are never
// retried; the remaining sentinels wrap domain errors so that callers can
// classify them with errors.Is.
var (
	ErrConfiguration  = errors.New("mapping: configuration fault")
	ErrNotImplemented = errors.New("mapping: direction not implemented")
	ErrState          = errors.New("mapping: invalid definition state")
	ErrAmbiguousMatch = fmt.Errorf("mapping: ambiguous match: %w", domain.ErrConflict)
	ErrRootImmutable  = fmt.Errorf("mapping: root link is immutable: %w", domain.ErrConflict)
)

// RuleError reports the rule that aborted a translation.
type RuleError struct {
	Target string
	Kind   RuleKind
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s rule %q: %v", e.Kind, e.Target, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// recovered converts a panic raised by a rule accessor into a configuration fault.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: rule panicked: %w", ErrConfiguration, err)
	}
	return configErrorf("rule panicked: %v", r)
}
