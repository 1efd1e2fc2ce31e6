// Package watch provides the background lock-state observer. A single
// ticking goroutine polls the store and publishes lock changes to
// subscribers over channels.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/store"
)

// LockChange is published whenever a user's access lock flips.
type LockChange struct {
	UserID string
	Locked bool
	At     time.Time
}

// defaultInterval is used when no poll interval is configured.
const defaultInterval = 2 * time.Second

// Observer polls the store for lock-state changes and fans them out to
// subscribers. One ticking goroutine serves all subscribers.
type Observer struct {
	store    store.Store
	interval time.Duration
	log      logrus.FieldLogger

	mu          sync.Mutex
	subscribers map[int]chan LockChange
	nextSubID   int
	known       map[string]bool
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// New creates an Observer polling at the given interval.
func New(s store.Store, interval time.Duration, log logrus.FieldLogger) *Observer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Observer{
		store:       s,
		interval:    interval,
		log:         log,
		subscribers: make(map[int]chan LockChange),
	}
}

// Subscribe registers a listener for lock changes. The returned cancel
// function removes the subscription and closes the channel.
func (o *Observer) Subscribe() (<-chan LockChange, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSubID
	o.nextSubID++
	ch := make(chan LockChange, 16)
	o.subscribers[id] = ch

	cancel := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subscribers[id]; ok {
			delete(o.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Start launches the polling goroutine. It is a no-op when already
// running.
func (o *Observer) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return
	}
	o.running = true
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	o.mu.Unlock()

	go o.run(ctx)
}

// Stop halts the polling goroutine and waits for it to exit.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopCh)
	done := o.doneCh
	o.mu.Unlock()

	<-done
}

// run is the single ticking loop.
func (o *Observer) run(ctx context.Context) {
	o.mu.Lock()
	done := o.doneCh
	o.mu.Unlock()

	defer func() {
		// Context cancellation ends the loop without Stop being
		// called; clear running so a later Start works. A newer run
		// may already own the observer, hence the doneCh check.
		o.mu.Lock()
		if o.doneCh == done {
			o.running = false
		}
		o.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	// Initial poll so the first tick already diffs against reality.
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll diffs the current lock set against the last observed one and
// publishes any changes. Poll errors are logged and retried next tick.
func (o *Observer) poll(ctx context.Context) {
	locked, err := o.store.GetLockedUserIDs(ctx)
	if err != nil {
		o.log.Warnf("lock poll failed: %v", err)
		return
	}

	if o.known == nil {
		// First observation establishes the baseline without events.
		o.known = locked
		return
	}

	now := time.Now().UTC()
	for id := range locked {
		if !o.known[id] {
			o.publish(ctx, LockChange{UserID: id, Locked: true, At: now})
		}
	}
	for id := range o.known {
		if !locked[id] {
			o.publish(ctx, LockChange{UserID: id, Locked: false, At: now})
		}
	}

	o.known = locked
}

// publish fans a change out to all subscribers and records a
// notification for the affected user. Slow subscribers are skipped
// rather than blocking the ticker.
func (o *Observer) publish(ctx context.Context, change LockChange) {
	verb := "unlocked"
	if change.Locked {
		verb = "locked"
	}
	notification := model.Notification{
		UserID:    change.UserID,
		Kind:      model.NotificationLockChanged,
		Message:   fmt.Sprintf("Your account has been %s", verb),
		CreatedAt: change.At,
	}
	if err := o.store.CreateNotification(ctx, notification); err != nil {
		o.log.Warnf("recording lock notification: %v", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subscribers {
		select {
		case ch <- change:
		default:
			// Drop rather than block the polling loop.
		}
	}
}
