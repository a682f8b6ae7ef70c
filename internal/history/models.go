package history

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a release run or stage.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

var allStatuses = []Status{
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Release represents one release run persisted in SQLite.
type Release struct {
	ID            int64
	RunID         string
	Project       string
	Version       string
	Repository    string
	Status        Status
	ErrorMessage  string
	WebhooksFired int
	WebhooksTotal int
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Duration returns the elapsed run time, using now for unfinished runs.
func (r Release) Duration(now time.Time) time.Duration {
	end := now
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	if end.Before(r.StartedAt) {
		return 0
	}
	return end.Sub(r.StartedAt)
}

// Step represents one pipeline stage outcome within a release run.
type Step struct {
	ID           int64
	ReleaseID    int64
	Name         string
	Status       Status
	Detail       string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
