package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// activeSlotIndex is the partial unique index backing the active-slot
// invariant. A unique violation on it is the conflict signal for creations
// that raced past the probe.
const activeSlotIndex = "appointments_active_slot_idx"

// Querier is the query subset shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool is the pool subset the repository needs, split out so tests can
// inject pgxmock.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists appointments in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const appointmentColumns = `id, clinic_id, customer_id, employee_id, service_id, scheduled_at, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.ClinicID,
		&a.CustomerID,
		&a.EmployeeID,
		&a.ServiceID,
		&a.ScheduledAt,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID fetches a single appointment row.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundError("appointment %s not found", id)
		}
		return nil, fmt.Errorf("scheduling: select appointment: %w", err)
	}
	return appt, nil
}

// HasConflict probes for an active appointment occupying the same
// provider/timestamp pair. Equality is exact on the full datetime value;
// no interval math is performed.
func (r *PostgresRepository) HasConflict(ctx context.Context, q Querier, employeeID uuid.UUID, scheduledAt time.Time, excludeID uuid.UUID) (bool, error) {
	if q == nil {
		q = r.pool
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE employee_id = $1
			  AND scheduled_at = $2
			  AND status NOT IN ('canceled', 'completed')
			  AND id <> $3
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, scheduledAt, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("scheduling: conflict probe: %w", err)
	}
	return exists, nil
}

// Create inserts a new appointment. The conflict probe and the insert run
// in one transaction; the partial unique index catches creations that race
// past the probe, and the violation is reported as a conflict.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scheduling: begin create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	taken, err := r.HasConflict(ctx, tx, appt.EmployeeID, appt.ScheduledAt, uuid.Nil)
	if err != nil {
		return err
	}
	if taken {
		return conflictError("provider already booked at %s", appt.ScheduledAt.Format(time.RFC3339))
	}

	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.Exec(ctx, query,
		appt.ID,
		appt.ClinicID,
		appt.CustomerID,
		appt.EmployeeID,
		appt.ServiceID,
		appt.ScheduledAt,
		appt.Status,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	); err != nil {
		if isActiveSlotViolation(err) {
			return conflictError("provider already booked at %s", appt.ScheduledAt.Format(time.RFC3339))
		}
		return fmt.Errorf("scheduling: insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("scheduling: commit create: %w", err)
	}
	return nil
}

// Update persists the mutable fields. Write-once references are never part
// of the statement. A rescheduling that lands on an occupied active slot
// trips the same unique index as creation and surfaces as a conflict.
func (r *PostgresRepository) Update(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments
		SET scheduled_at = $2, status = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.ScheduledAt,
		appt.Status,
		appt.Notes,
		appt.UpdatedAt,
	)
	if err != nil {
		if isActiveSlotViolation(err) {
			return conflictError("provider already booked at %s", appt.ScheduledAt.Format(time.RFC3339))
		}
		return fmt.Errorf("scheduling: update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("appointment %s not found", appt.ID)
	}
	return nil
}

func isActiveSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotIndex
}
