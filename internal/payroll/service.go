package payroll

import (
	"context"
	"log/slog"
	"time"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Directory resolves public employee identifiers; the payroll engine reads
// directory state but does not own it.
type Directory interface {
	ResolveEmpID(ctx context.Context, empID string) (int64, error)
}

// Enqueuer hands finished-payment notifications to the background worker.
type Enqueuer interface {
	EnqueuePayslip(ctx context.Context, recordID int64) error
}

// CreateInput carries fields for a new payroll record.
type CreateInput struct {
	EmpID       string
	Month       int
	Year        int
	BaseSalary  float64
	Allowances  float64
	Deductions  float64
	Status      string
	PaymentDate *time.Time
}

// UpdateInput patches a record. Nil amount pointers keep the stored value;
// the net is always recomputed from the resulting three inputs. EmpID, Month,
// and Year may be echoed back by clients and are rejected if they differ from
// the stored values.
type UpdateInput struct {
	EmpID       *string
	Month       *int
	Year        *int
	BaseSalary  *float64
	Allowances  *float64
	Deductions  *float64
	Status      *string
	PaymentDate *time.Time
	ClearDate   bool
}

// Service owns the payroll record lifecycle: derived totals, status moves,
// and referential rules against the employee directory.
type Service struct {
	repo      Repository
	directory Directory
	enqueuer  Enqueuer
	logger    *slog.Logger
}

// NewService constructs a Service. The enqueuer may be nil when no worker is
// wired (tests, seed runs).
func NewService(repo Repository, directory Directory, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, enqueuer: enqueuer, logger: logger}
}

// List returns every record, most recent period first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	if id <= 0 {
		return Record{}, shared.ValidationError("id", "must be positive")
	}
	return s.repo.Get(ctx, id)
}

// Create validates the period and amounts, resolves the employee, derives the
// net, and inserts. A record already covering (employee, month, year) fails
// with ErrDuplicatePeriod and leaves the existing record untouched.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if err := validateAmounts(in.BaseSalary, in.Allowances, in.Deductions); err != nil {
		return Record{}, err
	}
	if err := validatePeriod(in.Month, in.Year); err != nil {
		return Record{}, err
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return Record{}, shared.ValidationError("status", "must be pending, paid, or cancelled")
	}

	employeeID, err := s.directory.ResolveEmpID(ctx, in.EmpID)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.repo.Create(ctx, Record{
		EmployeeID:  employeeID,
		Month:       in.Month,
		Year:        in.Year,
		BaseSalary:  in.BaseSalary,
		Allowances:  in.Allowances,
		Deductions:  in.Deductions,
		NetSalary:   NetSalary(in.BaseSalary, in.Allowances, in.Deductions),
		Status:      status,
		PaymentDate: in.PaymentDate,
	})
	if err != nil {
		return Record{}, err
	}
	if rec.Status == StatusPaid {
		s.notifyPaid(ctx, rec.ID)
	}
	return rec, nil
}

// Update applies the patch. The employee reference and period are immutable
// after creation: a patch naming a different employee, month, or year is
// rejected. Any amount change recomputes the net from the three stored inputs.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Record, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}

	if in.EmpID != nil && *in.EmpID != existing.EmpID {
		return Record{}, shared.ValidationError("emp_id", "cannot be changed after creation")
	}
	if in.Month != nil && *in.Month != existing.Month {
		return Record{}, shared.ValidationError("month", "cannot be changed after creation")
	}
	if in.Year != nil && *in.Year != existing.Year {
		return Record{}, shared.ValidationError("year", "cannot be changed after creation")
	}

	updated := existing
	if in.BaseSalary != nil {
		updated.BaseSalary = *in.BaseSalary
	}
	if in.Allowances != nil {
		updated.Allowances = *in.Allowances
	}
	if in.Deductions != nil {
		updated.Deductions = *in.Deductions
	}
	if err := validateAmounts(updated.BaseSalary, updated.Allowances, updated.Deductions); err != nil {
		return Record{}, err
	}
	updated.NetSalary = NetSalary(updated.BaseSalary, updated.Allowances, updated.Deductions)

	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return Record{}, shared.ValidationError("status", "must be pending, paid, or cancelled")
		}
		updated.Status = *in.Status
	}
	if in.ClearDate {
		updated.PaymentDate = nil
	} else if in.PaymentDate != nil {
		updated.PaymentDate = in.PaymentDate
	}

	rec, err := s.repo.Update(ctx, updated)
	if err != nil {
		return Record{}, err
	}
	if existing.Status != StatusPaid && rec.Status == StatusPaid {
		s.notifyPaid(ctx, rec.ID)
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ValidationError("id", "must be positive")
	}
	return s.repo.Delete(ctx, id)
}

// ListForEmployee is the self-service projection. The requested reference
// must match the caller's own linked employee: a guessed or forged reference
// is refused here regardless of what the transport checked.
func (s *Service) ListForEmployee(ctx context.Context, callerEmployeeID *int64, employeeID int64) ([]Record, error) {
	if callerEmployeeID == nil || *callerEmployeeID != employeeID {
		return nil, shared.ErrCapabilityDenied
	}
	return s.repo.ListByEmployee(ctx, employeeID)
}

func (s *Service) notifyPaid(ctx context.Context, recordID int64) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueuePayslip(ctx, recordID); err != nil && s.logger != nil {
		s.logger.Warn("enqueue payslip", slog.Int64("record_id", recordID), slog.Any("error", err))
	}
}

func validateAmounts(base, allowances, deductions float64) error {
	if base < 0 {
		return shared.ValidationError("base_salary", "must not be negative")
	}
	if allowances < 0 {
		return shared.ValidationError("allowances", "must not be negative")
	}
	if deductions < 0 {
		return shared.ValidationError("deductions", "must not be negative")
	}
	return nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return shared.ValidationError("month", "must be between 1 and 12")
	}
	if year < 2000 {
		return shared.ValidationError("year", "must be 2000 or later")
	}
	return nil
}
