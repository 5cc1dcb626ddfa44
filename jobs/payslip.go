package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	jobmetrics "github.com/atlas-hrm/atlas-hrm/internal/jobs"
)

// MailConfig carries SMTP delivery settings for payslip notifications.
type MailConfig struct {
	Host string
	Port int
	From string
}

// PayslipJob emails the employee when a payroll record is marked paid.
type PayslipJob struct {
	pool    *pgxpool.Pool
	mail    MailConfig
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	printer *message.Printer
}

// NewPayslipJob constructs a PayslipJob. Metrics may be nil.
func NewPayslipJob(pool *pgxpool.Pool, mail MailConfig, logger *slog.Logger, metrics *jobmetrics.Metrics) *PayslipJob {
	return &PayslipJob{
		pool:    pool,
		mail:    mail,
		logger:  logger,
		metrics: metrics,
		printer: message.NewPrinter(language.English),
	}
}

type payslipRow struct {
	empID     string
	firstName string
	email     string
	month     time.Month
	year      int
	net       float64
	status    string
}

// Handle processes TaskPayslipEmail tasks. Records that moved away from paid
// between enqueue and delivery are skipped without retry.
func (j *PayslipJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	tracker := j.metrics.Track(TaskPayslipEmail)
	defer func() { err = tracker.End(err) }()

	var payload PayslipPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	const query = `SELECT e.emp_id, e.first_name, e.email, p.month, p.year, p.net_salary, p.status
		FROM payroll_records p JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1`
	var row payslipRow
	var monthNum int
	err = j.pool.QueryRow(ctx, query, payload.RecordID).Scan(
		&row.empID, &row.firstName, &row.email, &monthNum, &row.year, &row.net, &row.status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asynq.SkipRetry
		}
		return err
	}
	if row.status != "paid" {
		return asynq.SkipRetry
	}
	row.month = time.Month(monthNum)

	subject := j.printer.Sprintf("Payslip for %s %d", row.month.String(), row.year)
	body := j.printer.Sprintf(
		"Hi %s,\r\n\r\nYour salary for %s %d has been paid.\r\nNet amount: %.2f\r\n\r\nAtlas HRM",
		row.firstName, row.month.String(), row.year, row.net)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		j.mail.From, row.email, subject, body)

	addr := fmt.Sprintf("%s:%d", j.mail.Host, j.mail.Port)
	if err := smtp.SendMail(addr, nil, j.mail.From, []string{row.email}, []byte(msg)); err != nil {
		if j.logger != nil {
			j.logger.Warn("payslip mail delivery", slog.String("emp_id", row.empID), slog.Any("error", err))
		}
		return err
	}
	j.metrics.PayslipSent()
	if j.logger != nil {
		j.logger.Info("payslip mail sent", slog.String("emp_id", row.empID),
			slog.Int("month", monthNum), slog.Int("year", row.year))
	}
	return nil
}
