package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts the events of a run. The shower runner moves events
// from in-progress to finished as workers complete them.
type ProgressBar struct {
	ID        string
	Name      string
	StartTime time.Time
	Total     uint64

	lock       sync.Mutex
	finished   uint64
	inProgress uint64
}

// IncrementInProgress marks amount events as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	b.inProgress += amount
	b.lock.Unlock()
}

// MoveInProgressToFinished marks amount started events as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	b.inProgress -= amount
	b.finished += amount
	b.lock.Unlock()
}

type progressBarStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// status copies the counters so that they can be encoded without holding
// the lock.
func (b *ProgressBar) status() progressBarStatus {
	b.lock.Lock()
	defer b.lock.Unlock()

	return progressBarStatus{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}
