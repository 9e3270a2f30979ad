package scheduling

// ParseStatus validates a caller-supplied status value against the enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcess, StatusCompleted, StatusCanceled:
		return Status(s), nil
	}
	return "", validationError("unknown status %q", s)
}

// Terminal reports whether no further mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransition reports whether a status change is legal. Transitions are
// strictly forward-only: pending -> process -> completed, with canceled
// reachable from pending and process. Setting the current status again is
// a permitted no-op.
func CanTransition(from, to Status) bool {
	if from == to {
		return !from.Terminal()
	}
	switch from {
	case StatusPending:
		return to == StatusProcess || to == StatusCanceled
	case StatusProcess:
		return to == StatusCompleted || to == StatusCanceled
	}
	return false
}
