package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors for missing reference rows.
var (
	ErrClinicNotFound   = errors.New("directory: clinic not found")
	ErrEmployeeNotFound = errors.New("directory: employee not found")
	ErrServiceNotFound  = errors.New("directory: service not found")
)

// Querier is the subset of pgxpool.Pool the repository needs, split out so
// tests can inject pgxmock.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads reference data from the relational database.
type PostgresRepository struct {
	pool Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(q Querier) *PostgresRepository {
	return &PostgresRepository{pool: q}
}

// GetClinic fetches a clinic by id.
func (r *PostgresRepository) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	query := `
		SELECT id, name, address, phone, created_at
		FROM clinics
		WHERE id = $1
	`
	var c Clinic
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.Phone,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, fmt.Errorf("directory: select clinic: %w", err)
	}
	return &c, nil
}

// GetEmployee fetches an employee by id.
func (r *PostgresRepository) GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	query := `
		SELECT id, clinic_id, name, email, specialty, created_at
		FROM employees
		WHERE id = $1
	`
	var e Employee
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.ClinicID,
		&e.Name,
		&e.Email,
		&e.Specialty,
		&e.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("directory: select employee: %w", err)
	}
	return &e, nil
}

// GetService fetches a service by id.
func (r *PostgresRepository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	query := `
		SELECT id, clinic_id, name, price_cents, duration_minutes, is_active, created_at
		FROM services
		WHERE id = $1
	`
	var s Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.ClinicID,
		&s.Name,
		&s.PriceCents,
		&s.DurationMinutes,
		&s.Active,
		&s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("directory: select service: %w", err)
	}
	return &s, nil
}
