package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeImportCSV is the task type for processing uploaded CSV imports.
	TaskTypeImportCSV = "import:csv"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// ImportCSVPayload points the worker at a stored import job.
type ImportCSVPayload struct {
	JobID int64 `json:"jobId"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewImportCSVTask constructs an Asynq task.
func NewImportCSVTask(payload ImportCSVPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeImportCSV, data), nil
}
