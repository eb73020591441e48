package models

import "time"

// ScheduledJobRun is one execution record of a background job (stale
// session expiry sweep, LRU cache trim, quota recomputation). Supplemented
// per spec.md §4.9's mention of a scheduled_job_runs log and hourly
// histogram aggregate.
type ScheduledJobRun struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	JobName    string    `gorm:"size:128;not null;index" json:"jobName"`
	Status     string    `gorm:"size:32;not null" json:"status"` // ok, failed
	Trigger    string    `gorm:"size:32;not null" json:"trigger"` // cron, manual
	StartedAt  time.Time `gorm:"not null;index" json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Summary    string    `gorm:"size:1024" json:"summary,omitempty"`
	DetailsJSON string   `gorm:"type:text;column:details" json:"-"`
}

func (ScheduledJobRun) TableName() string { return "scheduled_job_runs" }
