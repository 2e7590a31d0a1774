package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
)

// HooksRecorder keeps every Execute outcome reported by the place and user
// services so tests can assert which writes ran and how they ended. Read it
// through the accessor methods when writes may still be running.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses lists, in order, the outcomes recorded for one operation.
func (h *HooksRecorder) Statuses(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Operations {
		if ev.Name == name {
			out = append(out, ev.Status)
		}
	}
	return out
}

// ConflictCount reports conflict signals for one operation.
func (h *HooksRecorder) ConflictCount(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return count(h.Conflicts, name)
}

// RetryCount reports unavailable signals for one operation.
func (h *HooksRecorder) RetryCount(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return count(h.Retries, name)
}

func count(names []string, name string) int {
	n := 0
	for _, got := range names {
		if got == name {
			n++
		}
	}
	return n
}
