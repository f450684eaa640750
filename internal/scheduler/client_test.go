package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string      { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func newTestClient(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg, logger.New("test"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })

	return client, inspector
}

func TestHandleSchedulesReminderAtFollowUpDate(t *testing.T) {
	client, inspector := newTestClient(t)

	noteID := uuid.New()
	followUp := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	err := client.Handle(context.Background(), events.CaseNoteCreated{
		BaseEvent:        events.NewBaseEvent(),
		NoteID:           noteID,
		CaseID:           uuid.New(),
		ManagementType:   "reagendar",
		NextFollowUpDate: &followUp,
	})
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskFollowUpReminder {
		t.Fatalf("task type = %q", tasks[0].Type)
	}

	var payload FollowUpReminderPayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.NoteID != noteID.String() {
		t.Fatalf("noteId = %q, want %q", payload.NoteID, noteID)
	}
	if !payload.FollowUpDate.Equal(followUp) {
		t.Fatalf("followUpDate = %s, want %s", payload.FollowUpDate, followUp)
	}
}

func TestHandleIgnoresNotesWithoutFollowUpDate(t *testing.T) {
	client, inspector := newTestClient(t)

	err := client.Handle(context.Background(), events.CaseNoteCreated{
		BaseEvent:      events.NewBaseEvent(),
		NoteID:         uuid.New(),
		CaseID:         uuid.New(),
		ManagementType: "llamada",
	})
	if err != nil {
		t.Fatal(err)
	}

	// The queue is never created when nothing is enqueued.
	tasks, err := inspector.ListScheduledTasks("default")
	if err != nil && !errors.Is(err, asynq.ErrQueueNotFound) {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("scheduled tasks = %d, want 0", len(tasks))
	}
}
