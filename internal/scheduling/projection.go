package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ProjectionStore assembles the enriched read-side views: appointments
// joined with clinic and service display fields. It runs over database/sql
// and is deliberately decoupled from the write-model repository.
type ProjectionStore struct {
	db *sql.DB
}

// NewProjectionStore creates a projection store over a sql.DB handle.
func NewProjectionStore(db *sql.DB) *ProjectionStore {
	if db == nil {
		panic("scheduling: sql db required")
	}
	return &ProjectionStore{db: db}
}

const detailQuery = `
	SELECT a.id, a.clinic_id, a.customer_id, a.employee_id, a.service_id,
	       a.scheduled_at, a.status, a.notes, a.created_at, a.updated_at,
	       c.name AS clinic_name,
	       s.name AS service_name, s.price_cents,
	       e.name AS employee_name,
	       cu.name AS customer_name
	FROM appointments a
	JOIN clinics c ON c.id = a.clinic_id
	JOIN services s ON s.id = a.service_id
	JOIN employees e ON e.id = a.employee_id
	JOIN customers cu ON cu.id = a.customer_id
`

func scanDetail(row interface{ Scan(...any) error }) (*AppointmentDetail, error) {
	var d AppointmentDetail
	err := row.Scan(
		&d.ID,
		&d.ClinicID,
		&d.CustomerID,
		&d.EmployeeID,
		&d.ServiceID,
		&d.ScheduledAt,
		&d.Status,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ClinicName,
		&d.ServiceName,
		&d.ServicePriceCents,
		&d.EmployeeName,
		&d.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DetailByID returns the enriched view of a single appointment.
func (p *ProjectionStore) DetailByID(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := p.db.QueryRowContext(ctx, detailQuery+` WHERE a.id = $1`, id)
	d, err := scanDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("appointment %s not found", id)
		}
		return nil, fmt.Errorf("scheduling: select detail: %w", err)
	}
	return d, nil
}

// ListByCustomer returns all of a customer's appointments, newest slot
// first. No pagination; the full result set comes back.
func (p *ProjectionStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]AppointmentDetail, error) {
	return p.list(ctx, detailQuery+` WHERE a.customer_id = $1 ORDER BY a.scheduled_at DESC`, customerID)
}

// ListByClinic returns all of a clinic's appointments, newest slot first.
func (p *ProjectionStore) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]AppointmentDetail, error) {
	return p.list(ctx, detailQuery+` WHERE a.clinic_id = $1 ORDER BY a.scheduled_at DESC`, clinicID)
}

func (p *ProjectionStore) list(ctx context.Context, query string, arg any) ([]AppointmentDetail, error) {
	rows, err := p.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list details: %w", err)
	}
	defer rows.Close()

	details := []AppointmentDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scheduling: scan detail: %w", err)
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: iterate details: %w", err)
	}
	return details, nil
}
