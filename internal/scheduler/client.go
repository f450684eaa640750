// Package scheduler enqueues and processes delayed follow-up reminders
// backed by asynq.
package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client schedules follow-up reminder tasks.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
		log:    log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleFollowUpReminder enqueues the reminder to run at the follow-up date.
func (c *Client) ScheduleFollowUpReminder(ctx context.Context, payload FollowUpReminderPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewFollowUpReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// RegisterHandlers subscribes the client to note events on the event bus.
func (c *Client) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CaseNoteCreated{}.EventName(), c)
}

// Handle enqueues a reminder for every note that carries a follow-up date.
func (c *Client) Handle(ctx context.Context, event events.Event) error {
	note, ok := event.(events.CaseNoteCreated)
	if !ok || note.NextFollowUpDate == nil {
		return nil
	}

	payload := FollowUpReminderPayload{
		NoteID:       note.NoteID.String(),
		CaseID:       note.CaseID.String(),
		FollowUpDate: *note.NextFollowUpDate,
	}
	if err := c.ScheduleFollowUpReminder(ctx, payload, *note.NextFollowUpDate); err != nil {
		return fmt.Errorf("schedule follow-up reminder: %w", err)
	}

	c.log.Info("follow-up reminder scheduled",
		"noteId", payload.NoteID,
		"runAt", payload.FollowUpDate,
	)
	return nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
