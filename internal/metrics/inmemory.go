package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated            uint64
	UserCacheHits           uint64
	UserCacheMisses         uint64
	ExercisesAdded          uint64
	LogsQueried             uint64
	LogQueryDurationCount   uint64
	LogQueryDurationTotalNs int64
}

// InMemoryRecorder keeps counters in process memory.
// It backs the /metrics endpoint and is safe for concurrent use.
type InMemoryRecorder struct {
	usersCreated            atomic.Uint64
	userCacheHits           atomic.Uint64
	userCacheMisses         atomic.Uint64
	exercisesAdded          atomic.Uint64
	logsQueried             atomic.Uint64
	logQueryDurationCount   atomic.Uint64
	logQueryDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:            m.usersCreated.Load(),
		UserCacheHits:           m.userCacheHits.Load(),
		UserCacheMisses:         m.userCacheMisses.Load(),
		ExercisesAdded:          m.exercisesAdded.Load(),
		LogsQueried:             m.logsQueried.Load(),
		LogQueryDurationCount:   m.logQueryDurationCount.Load(),
		LogQueryDurationTotalNs: m.logQueryDurationTotalNs.Load(),
	}
}

// IncUserCreated increments the users created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	m.usersCreated.Add(1)
}

// IncUserCacheHit increments the user cache hit counter.
func (m *InMemoryRecorder) IncUserCacheHit() {
	m.userCacheHits.Add(1)
}

// IncUserCacheMiss increments the user cache miss counter.
func (m *InMemoryRecorder) IncUserCacheMiss() {
	m.userCacheMisses.Add(1)
}

// IncExerciseAdded increments the exercises added counter.
func (m *InMemoryRecorder) IncExerciseAdded() {
	m.exercisesAdded.Add(1)
}

// IncLogQueried increments the log query counter.
func (m *InMemoryRecorder) IncLogQueried() {
	m.logsQueried.Add(1)
}

// ObserveLogQueryDuration records how long a log query took.
func (m *InMemoryRecorder) ObserveLogQueryDuration(duration time.Duration) {
	m.logQueryDurationCount.Add(1)
	m.logQueryDurationTotalNs.Add(duration.Nanoseconds())
}
