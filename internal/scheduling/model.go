// Package scheduling implements appointment booking, authorization, and
// lifecycle management for the multi-tenant clinic platform.
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcess   Status = "process"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Appointment is the core write model. The four foreign references are
// write-once; only ScheduledAt, Status, and Notes may change after creation.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	ClinicID    uuid.UUID `json:"clinic_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	ScheduledAt time.Time `json:"scheduled_date"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInput carries a booking request. CustomerID is taken from the
// actor, never from the request body.
type CreateInput struct {
	ClinicID    uuid.UUID
	EmployeeID  uuid.UUID
	ServiceID   uuid.UUID
	ScheduledAt time.Time
	Notes       string
}

// UpdatePatch is a partial update. Nil means "not present in the request".
// The write-once references are carried so the service can reject the whole
// request when a caller tries to change them.
type UpdatePatch struct {
	ScheduledAt *time.Time
	Status      *Status
	Notes       *string

	ClinicID   *uuid.UUID
	CustomerID *uuid.UUID
	EmployeeID *uuid.UUID
	ServiceID  *uuid.UUID
}

// hasWriteOnce reports whether the patch touches any write-once reference.
func (p UpdatePatch) hasWriteOnce() bool {
	return p.ClinicID != nil || p.CustomerID != nil || p.EmployeeID != nil || p.ServiceID != nil
}

// AppointmentDetail is the read-side projection: the appointment joined
// with clinic and service display fields.
type AppointmentDetail struct {
	Appointment
	ClinicName        string `json:"clinic_name"`
	ServiceName       string `json:"service_name"`
	ServicePriceCents int    `json:"service_price_cents"`
	EmployeeName      string `json:"employee_name"`
	CustomerName      string `json:"customer_name"`
}
