// internal/model/job.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents what a job does with the converted data
type JobType string

const (
	JobTypeConvert JobType = "CONVERT"
	JobTypePrint   JobType = "PRINT"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusSuccess    JobStatus = "SUCCESS"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job is the record of one conversion or print request
type Job struct {
	ID           uuid.UUID  `json:"id"`
	Type         JobType    `json:"type"`
	Status       JobStatus  `json:"status"`
	Model        string     `json:"model"`
	Label        string     `json:"label"`
	Images       int        `json:"images"`
	Pages        int        `json:"pages"`
	Bytes        int        `json:"bytes"`
	Rows         []int      `json:"rows,omitempty"`
	Warnings     []string   `json:"warnings,omitempty"`
	Target       string     `json:"target,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMs   *int       `json:"duration_ms,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

// NewJob creates a pending job with a fresh id
func NewJob(jobType JobType, model, label string, images int) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		Status:    JobStatusPending,
		Model:     model,
		Label:     label,
		Images:    images,
		StartedAt: time.Now(),
	}
}

// Complete marks the job finished, failed when err is not nil
func (j *Job) Complete(err error) {
	now := time.Now()
	duration := int(now.Sub(j.StartedAt).Milliseconds())
	j.CompletedAt = &now
	j.DurationMs = &duration

	if err != nil {
		msg := err.Error()
		j.ErrorMessage = &msg
		j.Status = JobStatusFailed
		return
	}
	j.Status = JobStatusSuccess
}

// IsCompleted checks if the job has finished either way
func (j *Job) IsCompleted() bool {
	return j.Status == JobStatusSuccess || j.Status == JobStatusFailed
}
