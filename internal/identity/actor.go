// Package identity resolves authenticated requests into actors.
package identity

import "github.com/google/uuid"

// Role distinguishes the two kinds of authenticated users.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleEmployee
}

// Actor is the authenticated identity performing an operation. It is
// produced at the HTTP edge and passed explicitly into every core function;
// the core never reads it from ambient state.
type Actor struct {
	ID       uuid.UUID
	Role     Role
	ClinicID uuid.UUID // set for employees only; uuid.Nil when unassigned
}

// IsCustomer reports whether the actor is a customer.
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

// IsEmployee reports whether the actor is an employee.
func (a Actor) IsEmployee() bool { return a.Role == RoleEmployee }

// HasClinic reports whether an employee actor carries a clinic assignment.
// An employee without one is an inconsistent account, not a valid state.
func (a Actor) HasClinic() bool { return a.ClinicID != uuid.Nil }
