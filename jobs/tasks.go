package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPayslipEmail is enqueued when a payroll record transitions to paid.
	TaskPayslipEmail = "payroll:payslip"
	// TaskSessionsPurge removes expired session audit rows from Postgres.
	TaskSessionsPurge = "sessions:purge"
)

// PayslipPayload identifies the paid record to notify about.
type PayslipPayload struct {
	RecordID int64 `json:"record_id"`
}

// NewPayslipTask constructs an Asynq task for a paid payroll record.
func NewPayslipTask(recordID int64) (*asynq.Task, error) {
	data, err := json.Marshal(PayslipPayload{RecordID: recordID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayslipEmail, data), nil
}

// NewSessionsPurgeTask constructs the purge task; it carries no payload.
func NewSessionsPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsPurge, nil)
}

// Enqueuer submits payroll notifications to the queue. It satisfies
// payroll.Enqueuer.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer constructs an Asynq-backed enqueuer.
func NewEnqueuer(redisOpts asynq.RedisClientOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts)}
}

// EnqueuePayslip queues the payslip email for the record.
func (e *Enqueuer) EnqueuePayslip(ctx context.Context, recordID int64) error {
	task, err := NewPayslipTask(recordID)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
