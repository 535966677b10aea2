package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a generation run.
type Status string

const (
	StatusPending           Status = "pending"
	StatusGeneratingContent Status = "generating_content"
	StatusGeneratingScript  Status = "generating_script"
	StatusGeneratingProgram Status = "generating_program"
	StatusRendering         Status = "rendering"
	StatusSynthesizing      Status = "synthesizing"
	StatusSyncing           Status = "syncing"
	StatusPublishing        Status = "publishing"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusGeneratingContent,
	StatusGeneratingScript,
	StatusGeneratingProgram,
	StatusRendering,
	StatusSynthesizing,
	StatusSyncing,
	StatusPublishing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a run in this status will not change again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	_, known := statusSet[s]
	return known && s != StatusPending && !s.IsTerminal()
}

// Job is a generation run persisted in SQLite. A row is written when a
// request is accepted and updated as the pipeline moves through its stages.
type Job struct {
	ID             int64
	RequestID      string
	Topic          string
	Slug           string
	Status         Status
	SpeedFactor    float64
	StretchApplied bool
	FallbackUsed   bool
	PublicID       string
	VideoURL       string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// DatabaseHealth captures diagnostic information about the jobs database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}
