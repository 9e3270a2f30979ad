// Package directory provides read-only lookups of clinics, employees, and
// services, used to validate booking references.
package directory

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is a tenant of the platform.
type Clinic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Employee is a provider belonging to exactly one clinic.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a bookable offering belonging to exactly one clinic.
type Service struct {
	ID              uuid.UUID `json:"id"`
	ClinicID        uuid.UUID `json:"clinic_id"`
	Name            string    `json:"name"`
	PriceCents      int       `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
