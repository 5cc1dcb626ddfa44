package payroll

import (
	"math"
	"time"
)

// Record statuses. The data model imposes no ordering between them: a record
// may move freely among the three.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Record is one payroll cycle for one employee. The employee reference and
// period are fixed at creation; NetSalary is derived and never accepted as
// input.
type Record struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"-"`
	EmpID        string     `json:"emp_id"`
	EmployeeName string     `json:"employee_name,omitempty"`
	Month        int        `json:"month"`
	Year         int        `json:"year"`
	BaseSalary   float64    `json:"base_salary"`
	Allowances   float64    `json:"allowances"`
	Deductions   float64    `json:"deductions"`
	NetSalary    float64    `json:"net_salary"`
	Status       string     `json:"status"`
	PaymentDate  *time.Time `json:"payment_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ValidStatus reports whether s is one of the three record statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// NetSalary derives the net amount from the three stored inputs. Always
// recomputed in full, never adjusted incrementally, so repeated edits cannot
// accumulate drift; the result is rounded to two fraction digits to match the
// numeric(12,2) columns.
func NetSalary(base, allowances, deductions float64) float64 {
	return round2(base + allowances - deductions)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
