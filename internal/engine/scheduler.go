package engine

import (
	"container/heap"
	"log/slog"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
)

// workItem is one scheduled continuation
type workItem struct {
	at  float64
	seq uint64
	fn  func()
}

// workQueue is a priority queue of continuations ordered by wake time
type workQueue []*workItem

// Len returns the number of items in the queue
func (q workQueue) Len() int { return len(q) }

// Less compares two items by wake time, then by insertion order
func (q workQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

// Swap swaps two items in the queue
func (q workQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

// Push adds an item to the queue
func (q *workQueue) Push(x any) {
	*q = append(*q, x.(*workItem))
}

// Pop removes and returns the last item from the queue
func (q *workQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	*q = old[:n-1]
	return item
}

// Scheduler drives the virtual clock of a simulation run. All activity is
// expressed as closures scheduled at virtual times; RunUntil pops them in
// time order and runs each with the clock set to its wake time. Closures
// scheduled for the same instant run in the order they were scheduled, so
// same-time behavior is deterministic.
//
// The scheduler is single-threaded: closures run on the caller's goroutine,
// must not block, and may freely schedule more work.
type Scheduler struct {
	now    float64
	seq    uint64
	queue  workQueue
	logger *slog.Logger
}

// NewScheduler creates a scheduler with the clock at zero
func NewScheduler() *Scheduler {
	s := &Scheduler{
		queue:  make(workQueue, 0),
		logger: logger.Default,
	}
	heap.Init(&s.queue)
	return s
}

// SetLogger sets the scheduler's logger
func (s *Scheduler) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Now returns the current virtual time in seconds
func (s *Scheduler) Now() float64 {
	return s.now
}

// Len returns the number of pending continuations
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Schedule queues fn to run delay seconds from now. A negative delay is
// clamped to zero, which queues fn at the current instant behind work
// already queued there.
func (s *Scheduler) Schedule(delay float64, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.ScheduleAt(s.now+delay, fn)
}

// ScheduleAt queues fn to run at the given absolute virtual time. Times in
// the past are clamped to the current instant.
func (s *Scheduler) ScheduleAt(at float64, fn func()) {
	if at < s.now {
		at = s.now
	}
	s.seq++
	heap.Push(&s.queue, &workItem{at: at, seq: s.seq, fn: fn})
}

// RunUntil executes queued continuations in time order until the queue is
// exhausted or the next item is due past the horizon. Items scheduled at
// exactly the horizon still run. The clock finishes at the horizon and
// unprocessed items stay queued. Returns the number of continuations run.
func (s *Scheduler) RunUntil(horizon float64) int {
	s.logger.Debug("Scheduler running",
		"from", s.now,
		"until", horizon,
		"pending", s.queue.Len())

	processed := 0
	for s.queue.Len() > 0 && s.queue[0].at <= horizon {
		item := heap.Pop(&s.queue).(*workItem)
		s.now = item.at
		item.fn()
		processed++
	}

	if horizon > s.now {
		s.now = horizon
	}

	s.logger.Debug("Scheduler finished",
		"now", s.now,
		"processed", processed,
		"abandoned", s.queue.Len())

	return processed
}
