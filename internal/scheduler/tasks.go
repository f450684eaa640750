package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpReminder = "casenotes.followup"

// FollowUpReminderPayload identifies the note whose follow-up is due. The
// scheduled date is carried along so the worker can detect rescheduling.
type FollowUpReminderPayload struct {
	NoteID       string    `json:"noteId"`
	CaseID       string    `json:"caseId"`
	FollowUpDate time.Time `json:"followUpDate"`
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	return payload, nil
}
