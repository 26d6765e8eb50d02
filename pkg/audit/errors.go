package audit

import "errors"

// ErrMissingAction is returned when an event is logged without an action.
var ErrMissingAction = errors.New("audit event requires an action")
