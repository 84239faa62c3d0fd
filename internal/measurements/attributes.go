package measurements

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
)

var (
	AttrStatusCompleted = attribute.String("status", "completed")
	AttrStatusFailed    = attribute.String("status", "attack-failed")
	AttrStatusPanic     = attribute.String("status", "error-panic")
	AttrStatusError     = attribute.String("status", "error-internal")
)

// Status maps the end of a simulation run to a status attribute. A nil err
// with attackFailed set is an expected outcome, not an error.
func Status(attackFailed bool, err error) attribute.KeyValue {
	var panicked interface{ Recovered() any }
	switch {
	case err == nil && attackFailed:
		return AttrStatusFailed
	case err == nil:
		return AttrStatusCompleted
	case errors.As(err, &panicked):
		return AttrStatusPanic
	default:
		return AttrStatusError
	}
}
