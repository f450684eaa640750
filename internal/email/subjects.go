package email

const subjectFollowUpReminderFmt = "Recordatorio de seguimiento: %s"
