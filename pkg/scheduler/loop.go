// Package scheduler provides the host event loop that runs deferred
// lifecycle work.
//
// A Loop has two phases. The synchronous phase is whatever the calling
// goroutine is doing right now: mounting, unmounting, remounting. The
// deferred phase is a queue of macrotasks that only runs when the loop is
// flushed (Flush) or driven (Run). Anything scheduled during a synchronous
// phase therefore runs strictly after that phase has returned.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// Clock reports the current time for due-time calculations.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Loop is a single-consumer macrotask queue. Tasks may be posted from any
// goroutine but only ever run on the goroutine calling Flush or Run.
type Loop struct {
	mu    sync.Mutex
	queue taskQueue
	seq   uint64
	clock Clock
	delay time.Duration
	wake  chan struct{}

	// OnSchedule is called after a task is queued. Hosts that only flush on
	// demand use it to request a turn of the loop.
	OnSchedule func()
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock used to compute due times.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithDeferDelay sets the delay applied by Schedule. The default is zero,
// meaning "the next macrotask".
func WithDeferDelay(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.delay = d
		}
	}
}

// NewLoop creates an empty loop.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		clock: SystemClock{},
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Clock returns the loop's clock.
func (l *Loop) Clock() Clock {
	return l.clock
}

// DeferDelay returns the delay applied by Schedule.
func (l *Loop) DeferDelay() time.Duration {
	return l.delay
}

// Schedule queues task to run after the current synchronous phase, delayed
// by the loop's defer delay.
func (l *Loop) Schedule(task func()) {
	l.ScheduleAfter(l.delay, task)
}

// ScheduleAfter queues task to run no earlier than d from now. Tasks with
// equal due times run in the order they were scheduled.
func (l *Loop) ScheduleAfter(d time.Duration, task func()) {
	if task == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	l.mu.Lock()
	l.seq++
	heap.Push(&l.queue, &queuedTask{
		due: l.clock.Now().Add(d),
		seq: l.seq,
		fn:  task,
	})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	if l.OnSchedule != nil {
		l.OnSchedule()
	}
}

// Every runs task every d until the returned cancel function is called.
// The first run happens d from now. A panicking run is reported like any
// other task and does not end the interval.
func (l *Loop) Every(d time.Duration, task func()) (cancel func()) {
	if task == nil || d <= 0 {
		return func() {}
	}
	var (
		mu      sync.Mutex
		stopped bool
	)
	isStopped := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stopped
	}
	var tick func()
	tick = func() {
		if isStopped() {
			return
		}
		// Rescheduled even when task panics.
		defer func() {
			if !isStopped() {
				l.ScheduleAfter(d, tick)
			}
		}()
		task()
	}
	l.ScheduleAfter(d, tick)
	return func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
	}
}

// Pending returns the number of queued tasks, due or not.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Len()
}

// NextDue returns the due time of the earliest queued task.
func (l *Loop) NextDue() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queue.Len() == 0 {
		return time.Time{}, false
	}
	return l.queue[0].due, true
}

// Flush runs every task that is due, including tasks scheduled by the tasks
// it runs, until nothing is due. It returns the number of tasks run.
func (l *Loop) Flush() int {
	n := 0
	for {
		task, ok := l.popDue()
		if !ok {
			return n
		}
		l.runTask(task)
		n++
	}
}

// Run drives the loop until ctx is cancelled, running tasks as they become
// due. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()

		var timerC <-chan time.Time
		var timer *time.Timer
		if due, ok := l.NextDue(); ok {
			timer = time.NewTimer(due.Sub(l.clock.Now()))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *Loop) popDue() (*queuedTask, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.queue.Len() == 0 {
		return nil, false
	}
	if l.queue[0].due.After(l.clock.Now()) {
		return nil, false
	}
	return heap.Pop(&l.queue).(*queuedTask), true
}

func (l *Loop) runTask(task *queuedTask) {
	defer errors.Recover("scheduler.task")
	task.fn()
}

type queuedTask struct {
	due time.Time
	seq uint64
	fn  func()
}

// taskQueue orders tasks by due time, then by scheduling order.
type taskQueue []*queuedTask

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*queuedTask)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
