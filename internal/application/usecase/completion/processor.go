// Package completion reacts to survey change events: when a record
// transitions from incomplete to completed, the affected user is
// reported to the external completion handler, with retries on
// failure.
package completion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/pkg/logger"
)

const (
	DefaultRetryBackoff = 5 * time.Second
	DefaultMaxAttempts  = 10
)

// Record is the slice of a survey row the processor cares about.
type Record struct {
	UserID      string
	CompletedAt *time.Time
}

// qualifies is edge-triggered: only the incomplete-to-complete
// transition counts. A row that was already complete and is updated
// again does not re-qualify.
func qualifies(oldRecord, newRecord *Record) bool {
	if newRecord == nil || newRecord.CompletedAt == nil {
		return false
	}
	return oldRecord == nil || oldRecord.CompletedAt == nil
}

// Processor owns the in-memory FIFO of user ids awaiting delivery.
// A busy flag keeps at most one drain loop running; a failed delivery
// re-enqueues at the tail and waits the fixed backoff. After
// maxAttempts failures for the same user the id is moved to the
// dead-letter set instead of cycling forever.
//
// The queue is not persisted; ids enqueued during a final drain are
// lost on process exit, which is acceptable because the handler call
// is idempotent at the backend.
type Processor struct {
	notifier    service.CompletionNotifier
	logger      logger.Logger
	backoff     time.Duration
	maxAttempts int

	mu       sync.Mutex
	queue    []string
	draining bool
	attempts map[string]int
	dead     []string
}

func NewProcessor(notifier service.CompletionNotifier, log logger.Logger, backoff time.Duration, maxAttempts int) *Processor {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Processor{
		notifier:    notifier,
		logger:      log,
		backoff:     backoff,
		maxAttempts: maxAttempts,
		attempts:    make(map[string]int),
	}
}

// HandleEvent inspects one change notification and enqueues the user
// when the event qualifies. Returns whether an enqueue happened.
func (p *Processor) HandleEvent(oldRecord, newRecord *Record) bool {
	if !qualifies(oldRecord, newRecord) {
		return false
	}
	p.Enqueue(newRecord.UserID)
	return true
}

// Enqueue appends the user id and kicks the drain loop. Safe to call
// from any goroutine; a drain already in progress just picks the new
// entry up.
func (p *Processor) Enqueue(userID string) {
	p.mu.Lock()
	p.queue = append(p.queue, userID)
	p.mu.Unlock()
	go p.ProcessQueue()
}

// ProcessQueue drains the queue one id at a time. Re-entrant safe:
// a second call while a drain is active returns immediately.
func (p *Processor) ProcessQueue() {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.mu.Unlock()

	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		userID := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		err := p.notifier.NotifyCompleted(context.Background(), userID)
		if err == nil {
			p.mu.Lock()
			delete(p.attempts, userID)
			p.mu.Unlock()
			p.logger.Info("Completion delivered", zap.String("user_id", userID))
			continue
		}

		p.mu.Lock()
		p.attempts[userID]++
		failures := p.attempts[userID]
		if failures >= p.maxAttempts {
			delete(p.attempts, userID)
			p.dead = append(p.dead, userID)
			p.mu.Unlock()
			p.logger.Error("Completion delivery dead-lettered", err,
				zap.String("user_id", userID), zap.Int("attempts", failures))
			continue
		}
		p.queue = append(p.queue, userID)
		p.mu.Unlock()

		p.logger.Warn("Completion delivery failed, will retry",
			zap.String("user_id", userID), zap.Int("attempt", failures), zap.Error(err))
		time.Sleep(p.backoff)
	}
}

// Pending returns a snapshot of the queued user ids, oldest first.
func (p *Processor) Pending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.queue))
	copy(out, p.queue)
	return out
}

// DeadLetters returns the user ids that exhausted their retries.
func (p *Processor) DeadLetters() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.dead))
	copy(out, p.dead)
	return out
}
