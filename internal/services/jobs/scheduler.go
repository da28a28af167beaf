package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/ports/jobs"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
)

// Scheduler управляет запуском периодических джоб
type Scheduler struct {
	jobs           []jobs.Job
	alerterService service.IAlerterService
	retryDelays    []time.Duration
	log            *slog.Logger
}

// NewScheduler создаёт новый планировщик джоб; alerterService может быть nil
func NewScheduler(log *slog.Logger, alerterService service.IAlerterService) *Scheduler {
	return &Scheduler{
		jobs:           make([]jobs.Job, 0),
		alerterService: alerterService,
		retryDelays: []time.Duration{
			1 * time.Minute,
			10 * time.Minute,
			30 * time.Minute,
		},
		log: log,
	}
}

// Register регистрирует джобу в планировщике
func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job_name", job.Name(), "total_jobs", len(s.jobs))
}

// Start запускает по горутине на джобу и сразу возвращается; джобы живут до отмены ctx
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.jobs) == 0 {
		s.log.Error("no jobs registered, scheduler not started")
		return nil
	}

	s.log.Info("starting job scheduler", "jobs_count", len(s.jobs))

	for _, job := range s.jobs {
		go s.runJob(ctx, job)
	}

	return nil
}

// runJob запускает отдельную джобу в цикле
func (s *Scheduler) runJob(ctx context.Context, job jobs.Job) {
	jobName := job.Name()
	for {
		now := time.Now()
		nextRun := job.NextRun(now)
		s.log.Debug("job scheduled", "job_name", jobName, "next_run", nextRun)

		timer := time.NewTimer(nextRun.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("job stopped by context", "job_name", jobName)
			return
		case <-timer.C:
			attempts, err := s.executeJobWithRetry(ctx, job)
			switch {
			case err == nil:
				s.log.Info("job executed successfully", "job_name", jobName)
			case errors.Is(err, context.Canceled):
				s.log.Info("job interrupted by shutdown", "job_name", jobName)
				return
			default:
				s.log.Error("job failed after all retries",
					"job_name", jobName,
					"error", err,
					"attempts", len(attempts),
				)
				s.sendAlert(ctx, jobName, attempts)
			}
		}
	}
}

// jobAttemptError ошибка конкретной попытки выполнения джобы
type jobAttemptError struct {
	attempt int
	err     error
}

// executeJobWithRetry выполняет джобу с retry при ошибках | now + 1m + 10m + 30m.
// Возвращает ошибки всех попыток и финальную ошибку.
func (s *Scheduler) executeJobWithRetry(ctx context.Context, job jobs.Job) ([]jobAttemptError, error) {
	jobName := job.Name()
	var attemptErrors []jobAttemptError

	for attempt := 1; ; attempt++ {
		err := job.Run(ctx)
		if err == nil {
			return nil, nil
		}
		attemptErrors = append(attemptErrors, jobAttemptError{attempt: attempt, err: err})

		if attempt > len(s.retryDelays) {
			break
		}
		s.log.Warn("job execution failed, will retry",
			"job_name", jobName,
			"attempt", attempt,
			"retries_remaining", len(s.retryDelays)-attempt+1,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return attemptErrors, ctx.Err()
		case <-time.After(s.retryDelays[attempt-1]):
		}
	}

	return attemptErrors, fmt.Errorf("all retry attempts failed (total attempts: %d)", len(attemptErrors))
}

// sendAlert алертит на финальную ошибку после ретраев
func (s *Scheduler) sendAlert(ctx context.Context, jobName string, attemptErrors []jobAttemptError) {
	if s.alerterService == nil {
		return
	}

	errorLines := make([]string, 0, len(attemptErrors))
	for _, a := range attemptErrors {
		errorLines = append(errorLines, fmt.Sprintf("Attempt %d: %s", a.attempt, a.err.Error()))
	}

	var message strings.Builder
	message.WriteString("⚠️ Scheduler job failed, retries exhausted\n\n")
	message.WriteString(fmt.Sprintf("Job: %s\n\n", jobName))
	message.WriteString("Attempt errors:\n")
	message.WriteString(strings.Join(errorLines, "\n"))

	if alertErr := s.alerterService.SendAlert(ctx, message.String()); alertErr != nil {
		s.log.Warn("failed to send job failure alert",
			"job_name", jobName,
			"error", alertErr,
		)
	}
}
