package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
	_ "github.com/atlas-hrm/atlas-hrm/testing"
)

type mockRepository struct {
	records map[int64]Record
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]Record), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]Record, error) {
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (m *mockRepository) Create(ctx context.Context, rec Record) (Record, error) {
	for _, existing := range m.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Month == rec.Month && existing.Year == rec.Year {
			return Record{}, shared.ErrDuplicatePeriod
		}
	}
	rec.ID = m.nextID
	m.nextID++
	rec.EmpID = fmt.Sprintf("EMP%03d", rec.EmployeeID)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockRepository) Update(ctx context.Context, rec Record) (Record, error) {
	if _, ok := m.records[rec.ID]; !ok {
		return Record{}, shared.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

type mockDirectory struct {
	employees map[string]int64
}

func (m *mockDirectory) ResolveEmpID(ctx context.Context, empID string) (int64, error) {
	id, ok := m.employees[empID]
	if !ok {
		return 0, shared.ErrUnknownEmployee
	}
	return id, nil
}

type mockEnqueuer struct {
	enqueued []int64
}

func (m *mockEnqueuer) EnqueuePayslip(ctx context.Context, recordID int64) error {
	m.enqueued = append(m.enqueued, recordID)
	return nil
}

func newTestService() (*Service, *mockRepository, *mockEnqueuer) {
	repo := newMockRepository()
	enqueuer := &mockEnqueuer{}
	dir := &mockDirectory{employees: map[string]int64{"EMP001": 1, "EMP002": 2}}
	return NewService(repo, dir, enqueuer, nil), repo, enqueuer
}

func validCreate() CreateInput {
	return CreateInput{
		EmpID:      "EMP001",
		Month:      3,
		Year:       2025,
		BaseSalary: 5000,
		Allowances: 450.50,
		Deductions: 120.25,
	}
}

func TestCreateDerivesNetAndDefaultsPending(t *testing.T) {
	svc, _, enqueuer := newTestService()

	rec, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	assert.Equal(t, 5330.25, rec.NetSalary)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Empty(t, enqueuer.enqueued)
}

func TestCreateRejectsUnknownEmployee(t *testing.T) {
	svc, _, _ := newTestService()

	in := validCreate()
	in.EmpID = "EMP999"
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrUnknownEmployee)
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	svc, repo, _ := newTestService()

	first, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	in := validCreate()
	in.BaseSalary = 9999
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrDuplicatePeriod)

	kept, err := repo.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, kept.BaseSalary)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"negative base", func(in *CreateInput) { in.BaseSalary = -1 }},
		{"negative allowances", func(in *CreateInput) { in.Allowances = -0.01 }},
		{"negative deductions", func(in *CreateInput) { in.Deductions = -10 }},
		{"month zero", func(in *CreateInput) { in.Month = 0 }},
		{"month thirteen", func(in *CreateInput) { in.Month = 13 }},
		{"ancient year", func(in *CreateInput) { in.Year = 1999 }},
		{"bogus status", func(in *CreateInput) { in.Status = "archived" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreate()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestUpdateRecomputesNetFromStoredInputs(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	deductions := 300.0
	updated, err := svc.Update(context.Background(), rec.ID, UpdateInput{Deductions: &deductions})
	require.NoError(t, err)

	assert.Equal(t, 5150.50, updated.NetSalary)
	assert.Equal(t, 5000.0, updated.BaseSalary)
	assert.Equal(t, 450.50, updated.Allowances)
}

func TestUpdateRejectsPeriodAndEmployeeChanges(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	otherEmp := "EMP002"
	otherMonth := 4
	otherYear := 2026

	cases := []struct {
		name  string
		patch UpdateInput
	}{
		{"different employee", UpdateInput{EmpID: &otherEmp}},
		{"different month", UpdateInput{Month: &otherMonth}},
		{"different year", UpdateInput{Year: &otherYear}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), rec.ID, tc.patch)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	// Echoing the stored values back is fine.
	sameMonth := rec.Month
	sameEmp := rec.EmpID
	_, err = svc.Update(context.Background(), rec.ID, UpdateInput{EmpID: &sameEmp, Month: &sameMonth})
	require.NoError(t, err)
}

func TestUpdateTransitionToPaidEnqueuesPayslip(t *testing.T) {
	svc, _, enqueuer := newTestService()

	rec, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	paid := StatusPaid
	when := time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), rec.ID, UpdateInput{Status: &paid, PaymentDate: &when})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
	assert.Equal(t, rec.NetSalary, updated.NetSalary)
	assert.Equal(t, []int64{rec.ID}, enqueuer.enqueued)

	// Saving an already-paid record again does not re-notify.
	_, err = svc.Update(context.Background(), rec.ID, UpdateInput{Status: &paid})
	require.NoError(t, err)
	assert.Len(t, enqueuer.enqueued, 1)
}

func TestUpdateClearsPaymentDate(t *testing.T) {
	svc, _, _ := newTestService()

	when := time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)
	in := validCreate()
	in.Status = StatusPaid
	in.PaymentDate = &when
	rec, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	pending := StatusPending
	updated, err := svc.Update(context.Background(), rec.ID, UpdateInput{Status: &pending, ClearDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.PaymentDate)
}

func TestCreatePaidEnqueuesPayslip(t *testing.T) {
	svc, _, enqueuer := newTestService()

	in := validCreate()
	in.Status = StatusPaid
	rec, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []int64{rec.ID}, enqueuer.enqueued)
}

func TestListForEmployeeRefusesForeignReference(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	caller := int64(1)
	records, err := svc.ListForEmployee(context.Background(), &caller, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = svc.ListForEmployee(context.Background(), &caller, 2)
	require.ErrorIs(t, err, shared.ErrCapabilityDenied)

	_, err = svc.ListForEmployee(context.Background(), nil, 1)
	require.ErrorIs(t, err, shared.ErrCapabilityDenied)
}

func TestNetSalaryRounding(t *testing.T) {
	assert.Equal(t, 0.0, NetSalary(100, 0, 100))
	assert.Equal(t, 1100.21, NetSalary(1000.10, 200.25, 100.14))
	assert.Equal(t, -50.0, NetSalary(0, 0, 50))
}

func TestDeleteUnknownRecord(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
