package scheduler

import (
	"context"
	"errors"
	"fmt"

	"salesdesk_backend/internal/email"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes scheduled follow-up reminder tasks and emails the agent.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *Repository
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   NewRepository(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	noteID, err := uuid.Parse(payload.NoteID)
	if err != nil {
		return err
	}

	details, err := w.repo.FollowUpDetails(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil
		}
		return err
	}

	// Skip reminders that no longer apply: annulled notes, deactivated
	// agents, and notes rescheduled after this task was enqueued.
	if details.Annulled || !details.AgentActive {
		return nil
	}
	if details.NextFollowUpDate == nil || !details.NextFollowUpDate.Equal(payload.FollowUpDate) {
		return nil
	}

	err = w.sender.SendFollowUpReminderEmail(ctx, details.AgentEmail, email.FollowUpReminder{
		AgentName:    details.AgentName,
		ClientName:   details.ClientName,
		ClientPhone:  details.ClientPhone,
		FollowUpDate: details.NextFollowUpDate.Format("02/01/2006 15:04"),
	})
	if err != nil {
		return fmt.Errorf("send follow-up reminder: %w", err)
	}

	w.log.Info("follow-up reminder sent",
		"noteId", payload.NoteID,
		"agentEmail", details.AgentEmail,
	)
	return nil
}
