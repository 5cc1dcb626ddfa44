package employees

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-hrm/atlas-hrm/internal/platform/db"
	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Repository defines persistence operations for the employee directory.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Employee, int, error)
	GetByEmpID(ctx context.Context, empID string) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, emp Employee, passwordHash string) (Employee, error)
	Update(ctx context.Context, empID string, emp Employee) (Employee, error)
	UpdatePhoto(ctx context.Context, id int64, photoRef string) (Employee, error)
	Delete(ctx context.Context, empID string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const employeeColumns = `e.id, e.emp_id, e.first_name, e.last_name, e.email, e.mobile_no, e.dob,
	e.role_id, r.role_name, e.salary, e.date_of_joining, e.profile_photo, e.created_at, e.updated_at`

const employeeFrom = ` FROM employees e LEFT JOIN roles r ON r.id = e.role_id`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.EmpID, &e.FirstName, &e.LastName, &e.Email, &e.MobileNo, &e.DOB,
		&e.RoleID, &e.RoleName, &e.Salary, &e.DateOfJoining, &e.ProfilePhoto, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (e.first_name ILIKE ` + ph + ` OR e.last_name ILIKE ` + ph +
			` OR e.email ILIKE ` + ph + ` OR e.emp_id ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.RoleID != nil {
		argCount++
		where += ` AND e.role_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.RoleID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+employeeFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + employeeFrom + where + ` ORDER BY e.emp_id`
	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, emp)
	}
	return list, total, rows.Err()
}

func (r *repository) GetByEmpID(ctx context.Context, empID string) (Employee, error) {
	emp, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+employeeFrom+` WHERE e.emp_id = $1`, empID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (Employee, error) {
	emp, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+employeeFrom+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

// Create inserts the employee and its login principal in one transaction, so
// a duplicate email or emp_id leaves neither row behind.
func (r *repository) Create(ctx context.Context, emp Employee, passwordHash string) (Employee, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertEmployee = `INSERT INTO employees
			(emp_id, first_name, last_name, email, mobile_no, dob, role_id, salary, date_of_joining, profile_photo, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id`
		if err := tx.QueryRow(ctx, insertEmployee,
			emp.EmpID, emp.FirstName, emp.LastName, emp.Email, emp.MobileNo, emp.DOB,
			emp.RoleID, emp.Salary, emp.DateOfJoining, emp.ProfilePhoto,
		).Scan(&id); err != nil {
			return mapEmployeeError(err)
		}

		const insertPrincipal = `INSERT INTO principals (email, password_hash, role, employee_id, is_active, created_at, updated_at)
			VALUES ($1, $2, 'employee', $3, TRUE, NOW(), NOW())`
		if _, err := tx.Exec(ctx, insertPrincipal, emp.Email, passwordHash, id); err != nil {
			return mapEmployeeError(err)
		}
		return nil
	})
	if err != nil {
		return Employee{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Update(ctx context.Context, empID string, emp Employee) (Employee, error) {
	const query = `UPDATE employees SET
		first_name = $1, last_name = $2, email = $3, mobile_no = $4, dob = $5,
		role_id = $6, salary = $7, date_of_joining = $8,
		profile_photo = COALESCE($9, profile_photo), updated_at = NOW()
		WHERE emp_id = $10
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		emp.FirstName, emp.LastName, emp.Email, emp.MobileNo, emp.DOB,
		emp.RoleID, emp.Salary, emp.DateOfJoining, emp.ProfilePhoto, empID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, shared.ErrNotFound
		}
		return Employee{}, mapEmployeeError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) UpdatePhoto(ctx context.Context, id int64, photoRef string) (Employee, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE employees SET profile_photo = $1, updated_at = NOW() WHERE id = $2`, photoRef, id)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, shared.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the employee; linked principal and payroll rows go with it
// via ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, empID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE emp_id = $1`, empID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapEmployeeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if strings.Contains(pgErr.ConstraintName, "email") {
				return fmt.Errorf("%w: email already in use", shared.ErrDuplicateIdentifier)
			}
			return fmt.Errorf("%w: emp_id already in use", shared.ErrDuplicateIdentifier)
		case "23503":
			return shared.ErrUnknownRole
		}
	}
	return err
}
