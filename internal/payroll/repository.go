package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Repository defines persistence operations for payroll records.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const recordColumns = `p.id, p.employee_id, e.emp_id, e.first_name || ' ' || e.last_name,
	p.month, p.year, p.base_salary, p.allowances, p.deductions, p.net_salary,
	p.status, p.payment_date, p.created_at, p.updated_at`

const recordFrom = ` FROM payroll_records p JOIN employees e ON e.id = p.employee_id`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.EmpID, &rec.EmployeeName,
		&rec.Month, &rec.Year, &rec.BaseSalary, &rec.Allowances, &rec.Deductions, &rec.NetSalary,
		&rec.Status, &rec.PaymentDate, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func (r *repository) List(ctx context.Context) ([]Record, error) {
	const query = `SELECT ` + recordColumns + recordFrom + ` ORDER BY p.year DESC, p.month DESC, e.emp_id`
	return r.queryRecords(ctx, query)
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID int64) ([]Record, error) {
	const query = `SELECT ` + recordColumns + recordFrom +
		` WHERE p.employee_id = $1 ORDER BY p.year DESC, p.month DESC`
	return r.queryRecords(ctx, query, employeeID)
}

func (r *repository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Record, error) {
	const query = `SELECT ` + recordColumns + recordFrom + ` WHERE p.id = $1`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Create inserts the record. The unique index on (employee_id, month, year)
// makes the duplicate-period check and the write one atomic step: of two
// concurrent creates for the same period, exactly one commits.
func (r *repository) Create(ctx context.Context, rec Record) (Record, error) {
	const query = `INSERT INTO payroll_records
		(employee_id, month, year, base_salary, allowances, deductions, net_salary, status, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		rec.EmployeeID, rec.Month, rec.Year, rec.BaseSalary, rec.Allowances, rec.Deductions,
		rec.NetSalary, rec.Status, rec.PaymentDate,
	).Scan(&id)
	if err != nil {
		return Record{}, mapPayrollError(err)
	}
	return r.Get(ctx, id)
}

// Update writes the mutable fields. Employee and period columns are left out
// of the statement entirely; immutability is enforced in the service and
// backstopped here.
func (r *repository) Update(ctx context.Context, rec Record) (Record, error) {
	const query = `UPDATE payroll_records SET
		base_salary = $1, allowances = $2, deductions = $3, net_salary = $4,
		status = $5, payment_date = $6, updated_at = NOW()
		WHERE id = $7`
	tag, err := r.pool.Exec(ctx, query,
		rec.BaseSalary, rec.Allowances, rec.Deductions, rec.NetSalary,
		rec.Status, rec.PaymentDate, rec.ID)
	if err != nil {
		return Record{}, mapPayrollError(err)
	}
	if tag.RowsAffected() == 0 {
		return Record{}, shared.ErrNotFound
	}
	return r.Get(ctx, rec.ID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payroll_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapPayrollError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicatePeriod
		case "23503":
			return shared.ErrUnknownEmployee
		}
	}
	return err
}
