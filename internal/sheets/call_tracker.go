package sheets

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CallTracker counts Sheets API requests, retries included, per operation
type CallTracker struct {
	start       time.Time
	calls       int64
	retries     int64
	byOperation map[string]int64
	mutex       sync.RWMutex
}

// CallStats is a snapshot of a CallTracker
type CallStats struct {
	Calls       int64
	Retries     int64
	Duration    time.Duration
	ByOperation map[string]int64
}

// NewCallTracker creates an empty tracker
func NewCallTracker() *CallTracker {
	return &CallTracker{
		start:       time.Now(),
		byOperation: make(map[string]int64),
	}
}

// Record counts one request attempt; attempts after the first count as retries
func (t *CallTracker) Record(operation string, attempt int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.calls++
	if attempt > 0 {
		t.retries++
	}
	t.byOperation[operation]++
}

// Stats returns a copy of the counters
func (t *CallTracker) Stats() CallStats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	byOperation := make(map[string]int64, len(t.byOperation))
	for k, v := range t.byOperation {
		byOperation[k] = v
	}

	return CallStats{
		Calls:       t.calls,
		Retries:     t.retries,
		Duration:    time.Since(t.start),
		ByOperation: byOperation,
	}
}

// LogSummary logs the counters at debug level
func (t *CallTracker) LogSummary() {
	stats := t.Stats()

	logEvent := log.Debug().
		Int64("api_calls", stats.Calls).
		Int64("retries", stats.Retries).
		Dur("duration", stats.Duration)

	for operation, count := range stats.ByOperation {
		logEvent = logEvent.Int64(operation+"_calls", count)
	}

	logEvent.Msg("Sheets API call summary")
}
