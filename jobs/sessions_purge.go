package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/atlas-hrm/atlas-hrm/internal/auth"
	jobmetrics "github.com/atlas-hrm/atlas-hrm/internal/jobs"
)

// SessionsPurgeJob deletes expired session audit rows. The Redis grants
// already vanish with their TTL; this keeps the Postgres trail bounded.
type SessionsPurgeJob struct {
	auth    *auth.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSessionsPurgeJob constructs a SessionsPurgeJob. Metrics may be nil.
func NewSessionsPurgeJob(authService *auth.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionsPurgeJob {
	return &SessionsPurgeJob{auth: authService, logger: logger, metrics: metrics}
}

// Handle processes TaskSessionsPurge tasks.
func (j *SessionsPurgeJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	tracker := j.metrics.Track(TaskSessionsPurge)
	defer func() { err = tracker.End(err) }()

	purged, err := j.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("expired sessions purged", slog.Int64("count", purged))
	}
	return nil
}
