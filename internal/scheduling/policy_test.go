package scheduling

import (
	"testing"

	"github.com/google/uuid"

	"github.com/clinicore/platform/internal/identity"
)

func TestCanCreate(t *testing.T) {
	if !CanCreate(identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer}) {
		t.Error("customers must be allowed to create")
	}
	if CanCreate(identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee, ClinicID: uuid.New()}) {
		t.Error("employees must not originate bookings")
	}
}

func TestCanRead(t *testing.T) {
	clinicID := uuid.New()
	customerID := uuid.New()
	appt := &Appointment{
		ID:         uuid.New(),
		ClinicID:   clinicID,
		CustomerID: customerID,
		Status:     StatusPending,
	}

	tests := []struct {
		name     string
		actor    identity.Actor
		wantKind Kind
	}{
		{"owner customer", identity.Actor{ID: customerID, Role: identity.RoleCustomer}, ""},
		{"other customer", identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer}, KindAuthorization},
		{"clinic employee", identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee, ClinicID: clinicID}, ""},
		{"other clinic employee", identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee, ClinicID: uuid.New()}, KindAuthorization},
		{"unassigned employee", identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee}, KindConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanRead(tt.actor, appt)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if !IsKind(err, tt.wantKind) {
				t.Fatalf("expected %s error, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestEditableFieldsCustomer(t *testing.T) {
	customerID := uuid.New()
	actor := identity.Actor{ID: customerID, Role: identity.RoleCustomer}
	appt := &Appointment{ClinicID: uuid.New(), CustomerID: customerID, Status: StatusPending}

	fields, err := EditableFields(actor, appt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fields.Has(FieldScheduledAt) || !fields.Has(FieldNotes) {
		t.Errorf("pending owner should edit scheduled_date and notes, got %v", fields)
	}
	if fields.Has(FieldStatus) {
		t.Error("customers must never edit status")
	}

	for _, status := range []Status{StatusProcess, StatusCompleted, StatusCanceled} {
		appt.Status = status
		fields, err := EditableFields(actor, appt)
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if len(fields) != 0 {
			t.Errorf("status %s: expected empty set for customer, got %v", status, fields)
		}
	}

	appt.Status = StatusPending
	stranger := identity.Actor{ID: uuid.New(), Role: identity.RoleCustomer}
	if _, err := EditableFields(stranger, appt); !IsKind(err, KindAuthorization) {
		t.Errorf("non-owner should get authorization error, got %v", err)
	}
}

func TestEditableFieldsEmployee(t *testing.T) {
	clinicID := uuid.New()
	actor := identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee, ClinicID: clinicID}
	appt := &Appointment{ClinicID: clinicID, CustomerID: uuid.New(), Status: StatusPending}

	for _, status := range []Status{StatusPending, StatusProcess} {
		appt.Status = status
		fields, err := EditableFields(actor, appt)
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		for _, f := range []Field{FieldStatus, FieldNotes, FieldScheduledAt} {
			if !fields.Has(f) {
				t.Errorf("status %s: employee should edit %s", status, f)
			}
		}
	}

	for _, status := range []Status{StatusCompleted, StatusCanceled} {
		appt.Status = status
		fields, err := EditableFields(actor, appt)
		if err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if len(fields) != 0 {
			t.Errorf("terminal status %s: expected empty set, got %v", status, fields)
		}
	}

	appt.Status = StatusPending
	other := identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee, ClinicID: uuid.New()}
	if _, err := EditableFields(other, appt); !IsKind(err, KindAuthorization) {
		t.Errorf("wrong clinic should get authorization error, got %v", err)
	}
	unassigned := identity.Actor{ID: uuid.New(), Role: identity.RoleEmployee}
	if _, err := EditableFields(unassigned, appt); !IsKind(err, KindConfiguration) {
		t.Errorf("unassigned employee should get configuration error, got %v", err)
	}
}
