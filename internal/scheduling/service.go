package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/platform/internal/directory"
	"github.com/clinicore/platform/internal/identity"
	"github.com/clinicore/platform/internal/observability/metrics"
	"github.com/clinicore/platform/pkg/logging"
)

// Repository is the write-model persistence gateway.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, appt *Appointment) error
	Update(ctx context.Context, appt *Appointment) error
}

// Directory validates booking references.
type Directory interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (*directory.Employee, error)
	GetService(ctx context.Context, id uuid.UUID) (*directory.Service, error)
}

// Views assembles the enriched read-side projections.
type Views interface {
	DetailByID(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]AppointmentDetail, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]AppointmentDetail, error)
}

// Service orchestrates appointment operations: policy gating, reference
// validation, conflict checking, persistence, and cache invalidation.
type Service struct {
	repo    Repository
	dir     Directory
	views   Views
	cache   Invalidator
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewService wires the scheduling orchestrator.
func NewService(repo Repository, dir Directory, views Views, cache Invalidator, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if cache == nil {
		cache = NoopInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		dir:     dir,
		views:   views,
		cache:   cache,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Create books a new appointment for the acting customer. The conflict
// probe and the insert are atomic with respect to concurrent creations for
// the same provider/timestamp pair.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (*AppointmentDetail, error) {
	start := s.now()
	detail, err := s.create(ctx, actor, input)
	s.observe("create", start, err)
	return detail, err
}

func (s *Service) create(ctx context.Context, actor identity.Actor, input CreateInput) (*AppointmentDetail, error) {
	if !CanCreate(actor) {
		return nil, authorizationError("only customers may book appointments")
	}
	if input.ScheduledAt.IsZero() {
		return nil, validationError("scheduled_date is required")
	}
	if input.ClinicID == uuid.Nil || input.EmployeeID == uuid.Nil || input.ServiceID == uuid.Nil {
		return nil, validationError("clinic_id, employee_id and service_id are required")
	}

	svc, err := s.dir.GetService(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, directory.ErrServiceNotFound) {
			return nil, validationError("service %s does not exist", input.ServiceID)
		}
		return nil, err
	}
	if svc.ClinicID != input.ClinicID {
		return nil, validationError("service %s does not belong to clinic %s", input.ServiceID, input.ClinicID)
	}
	if !svc.Active {
		return nil, validationError("service %s is not active", input.ServiceID)
	}

	emp, err := s.dir.GetEmployee(ctx, input.EmployeeID)
	if err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			return nil, validationError("employee %s does not exist", input.EmployeeID)
		}
		return nil, err
	}
	if emp.ClinicID != input.ClinicID {
		return nil, validationError("employee %s does not belong to clinic %s", input.EmployeeID, input.ClinicID)
	}

	now := s.now().UTC()
	appt := &Appointment{
		ID:          uuid.New(),
		ClinicID:    input.ClinicID,
		CustomerID:  actor.ID,
		EmployeeID:  input.EmployeeID,
		ServiceID:   input.ServiceID,
		ScheduledAt: input.ScheduledAt,
		Status:      StatusPending,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"clinic_id", appt.ClinicID,
		"employee_id", appt.EmployeeID,
		"scheduled_at", appt.ScheduledAt,
	)
	return s.detail(ctx, appt)
}

// Get returns the enriched appointment if the actor may read it. Absence
// is a not-found error; a present-but-forbidden record is an authorization
// error.
func (s *Service) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*AppointmentDetail, error) {
	start := s.now()
	detail, err := s.get(ctx, actor, id)
	s.observe("get", start, err)
	return detail, err
}

func (s *Service) get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanRead(actor, appt); err != nil {
		return nil, err
	}
	return s.views.DetailByID(ctx, id)
}

// List returns the actor's visible appointments ordered by scheduled date
// descending: a customer's own bookings, or every booking in an employee's
// clinic. An employee without a clinic assignment fails before any
// repository access.
func (s *Service) List(ctx context.Context, actor identity.Actor) ([]AppointmentDetail, error) {
	start := s.now()
	details, err := s.list(ctx, actor)
	s.observe("list", start, err)
	return details, err
}

func (s *Service) list(ctx context.Context, actor identity.Actor) ([]AppointmentDetail, error) {
	switch {
	case actor.IsCustomer():
		return s.views.ListByCustomer(ctx, actor.ID)
	case actor.IsEmployee():
		if !actor.HasClinic() {
			return nil, configurationError("employee has no clinic assignment")
		}
		return s.views.ListByClinic(ctx, actor.ClinicID)
	}
	return nil, authorizationError("unknown actor role %q", actor.Role)
}

// Update applies a partial update. The whole request fails when the patch
// touches a write-once reference or any field outside the actor's editable
// set; nothing is persisted on any error path.
func (s *Service) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, patch UpdatePatch) (*AppointmentDetail, error) {
	start := s.now()
	detail, err := s.update(ctx, actor, id, patch)
	s.observe("update", start, err)
	return detail, err
}

func (s *Service) update(ctx context.Context, actor identity.Actor, id uuid.UUID, patch UpdatePatch) (*AppointmentDetail, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	editable, err := EditableFields(actor, appt)
	if err != nil {
		return nil, err
	}
	if patch.hasWriteOnce() {
		return nil, validationError("clinic_id, customer_id, employee_id and service_id cannot be changed after creation")
	}
	if len(editable) == 0 {
		if actor.IsCustomer() {
			return nil, validationError("only pending appointments may be modified by their owner")
		}
		return nil, validationError("appointment is in a terminal state and cannot be modified")
	}
	if patch.ScheduledAt != nil && !editable.Has(FieldScheduledAt) {
		return nil, validationError("scheduled_date is not editable in the current state")
	}
	if patch.Notes != nil && !editable.Has(FieldNotes) {
		return nil, validationError("notes is not editable in the current state")
	}
	if patch.Status != nil {
		if !editable.Has(FieldStatus) {
			return nil, validationError("only employees may change appointment status")
		}
		if _, err := ParseStatus(string(*patch.Status)); err != nil {
			return nil, err
		}
		if !CanTransition(appt.Status, *patch.Status) {
			return nil, validationError("illegal status transition %s -> %s", appt.Status, *patch.Status)
		}
	}
	if patch.ScheduledAt == nil && patch.Notes == nil && patch.Status == nil {
		return nil, validationError("no fields to update")
	}

	if patch.ScheduledAt != nil {
		appt.ScheduledAt = *patch.ScheduledAt
	}
	if patch.Notes != nil {
		appt.Notes = *patch.Notes
	}
	if patch.Status != nil {
		appt.Status = *patch.Status
	}
	appt.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("appointment updated",
		"appointment_id", appt.ID,
		"status", appt.Status,
	)
	return s.detail(ctx, appt)
}

// detail fetches the enriched view, falling back to the bare record when
// the projection fails after a committed write.
func (s *Service) detail(ctx context.Context, appt *Appointment) (*AppointmentDetail, error) {
	d, err := s.views.DetailByID(ctx, appt.ID)
	if err != nil {
		s.logger.Error("enriched view unavailable", "appointment_id", appt.ID, "error", err)
		return &AppointmentDetail{Appointment: *appt}, nil
	}
	return d, nil
}

// invalidate fires the coarse whole-namespace cache invalidation. The
// mutation is already committed; a cache failure is logged, not returned.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("cache invalidation failed", "error", err)
	}
}

func (s *Service) observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		if kind, ok := KindOf(err); ok {
			outcome = string(kind)
		} else {
			outcome = "error"
		}
		if IsKind(err, KindConflict) {
			s.metrics.ObserveConflict()
		}
	}
	s.metrics.ObserveOperation(operation, outcome)
	s.metrics.ObserveLatency(operation, s.now().Sub(start).Seconds())
}
