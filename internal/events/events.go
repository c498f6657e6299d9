// Package events provides lifecycle notifications for prime search runs.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventRunStarted is emitted after the queue is seeded and before workers spawn
	EventRunStarted EventType = "run_started"
	// EventQueueExhausted is emitted once the coordinator has set the termination flag
	EventQueueExhausted EventType = "queue_exhausted"
	// EventWorkerFinished is emitted when a worker leaves its loop
	EventWorkerFinished EventType = "worker_finished"
	// EventRunCompleted is emitted after every worker has been joined
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed is emitted when a worker failure aborts the run
	EventRunFailed EventType = "run_failed"
)

// Event represents a run lifecycle event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	WorkerID  int       `json:"worker_id,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	Strategy  string `json:"strategy,omitempty"`
	Workers   int    `json:"workers,omitempty"`
	MaxNumber int    `json:"max_number,omitempty"`
	Claimed   uint64 `json:"claimed,omitempty"`
	Found     uint64 `json:"found,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewRunStartedEvent creates a run started event
func NewRunStartedEvent(runID, strategy string, workers, maxNumber int) Event {
	return Event{
		Type:      EventRunStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Strategy:  strategy,
			Workers:   workers,
			MaxNumber: maxNumber,
		},
	}
}

// NewQueueExhaustedEvent creates a queue exhausted event
func NewQueueExhaustedEvent(runID string) Event {
	return Event{
		Type:      EventQueueExhausted,
		Timestamp: time.Now(),
		RunID:     runID,
	}
}

// NewWorkerFinishedEvent creates a worker finished event
func NewWorkerFinishedEvent(runID string, workerID int, claimed, found uint64) Event {
	return Event{
		Type:      EventWorkerFinished,
		Timestamp: time.Now(),
		RunID:     runID,
		WorkerID:  workerID,
		Data: EventData{
			Claimed: claimed,
			Found:   found,
		},
	}
}

// NewRunCompletedEvent creates a run completed event
func NewRunCompletedEvent(runID string, found uint64, d time.Duration) Event {
	return Event{
		Type:      EventRunCompleted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Found:    found,
			Duration: d.String(),
		},
	}
}

// NewRunFailedEvent creates a run failed event
func NewRunFailedEvent(runID string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventRunFailed,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Error: errMsg,
		},
	}
}
