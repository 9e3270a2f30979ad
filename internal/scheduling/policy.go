package scheduling

import "github.com/clinicore/platform/internal/identity"

// Field names an appointment field for edit-policy decisions.
type Field string

const (
	FieldScheduledAt Field = "scheduled_date"
	FieldStatus      Field = "status"
	FieldNotes       Field = "notes"
)

// FieldSet is the set of fields an actor may currently edit.
type FieldSet map[Field]struct{}

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func fieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// CanCreate reports whether the actor may originate a booking. Only
// customers book; employees manage existing appointments.
func CanCreate(actor identity.Actor) bool {
	return actor.IsCustomer()
}

// CanRead decides whether the actor may see the appointment at all.
// Returns nil when allowed, an authorization error when denied, and a
// configuration error for an employee with no clinic assignment (that is
// an inconsistent account, not an access decision).
func CanRead(actor identity.Actor, appt *Appointment) error {
	switch {
	case actor.IsCustomer():
		if appt.CustomerID != actor.ID {
			return authorizationError("appointment belongs to another customer")
		}
		return nil
	case actor.IsEmployee():
		if !actor.HasClinic() {
			return configurationError("employee has no clinic assignment")
		}
		if appt.ClinicID != actor.ClinicID {
			return authorizationError("appointment belongs to another clinic")
		}
		return nil
	}
	return authorizationError("unknown actor role %q", actor.Role)
}

// EditableFields derives which fields the actor may change given the
// appointment's current state. Scope failures (wrong owner, wrong clinic,
// missing clinic assignment) come back as errors; an empty set with a nil
// error means the actor may touch the appointment but nothing is editable
// in its current state.
func EditableFields(actor identity.Actor, appt *Appointment) (FieldSet, error) {
	if err := CanRead(actor, appt); err != nil {
		return nil, err
	}
	switch {
	case actor.IsCustomer():
		if appt.Status != StatusPending {
			return fieldSet(), nil
		}
		return fieldSet(FieldScheduledAt, FieldNotes), nil
	case actor.IsEmployee():
		if appt.Status.Terminal() {
			return fieldSet(), nil
		}
		return fieldSet(FieldStatus, FieldNotes, FieldScheduledAt), nil
	}
	return fieldSet(), nil
}
