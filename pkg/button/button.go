// Package button turns a remote to-do block into a polled, edge-triggered
// switch.
package button

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notion/pkg/notion"
	"github.com/mattsolo1/grove-notion/pkg/tree"
)

// Event is emitted when the remote checkbox flips.
type Event string

const (
	// Activated fires when the checkbox was ticked remotely.
	Activated Event = "activated"
	// Deactivated fires when the checkbox was unticked, including by the
	// button's own reset write.
	Deactivated Event = "deactivated"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 2 * time.Second

// ErrSubscribed is returned by Subscribe when the button is already polling.
var ErrSubscribed = errors.New("button is already subscribed")

// Handler is called synchronously from the polling goroutine.
type Handler func(ctx context.Context, b *Button)

// Button polls one checkbox and reports its transitions.
type Button struct {
	transport notion.Transport
	logger    logrus.FieldLogger
	interval  time.Duration

	tick sync.Mutex // serialises refetches and writes, never held while handlers run

	mu        sync.Mutex
	baseline  *tree.Checkbox
	handlers  map[Event][]Handler
	cancel    context.CancelFunc
	done      chan struct{}
	stopped   bool
	resetting chan struct{} // closed once the pending reset write is done
}

// Option configures a Button.
type Option func(*Button)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(b *Button) {
		if d > 0 {
			b.interval = d
		}
	}
}

// New creates a Button around a resolved checkbox. The checkbox becomes the
// initial baseline and must not be mutated by the caller afterwards.
func New(checkbox *tree.Checkbox, t notion.Transport, logger logrus.FieldLogger, opts ...Option) *Button {
	b := &Button{
		transport: t,
		interval:  DefaultInterval,
		baseline:  checkbox,
		handlers:  make(map[Event][]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logger.WithFields(logrus.Fields{
		"module": "Button",
		"id":     checkbox.ID(),
	})
	return b
}

// ID returns the id of the underlying block.
func (b *Button) ID() string {
	return b.current().ID()
}

// Pressed reports the checked state of the last fetched snapshot.
func (b *Button) Pressed() bool {
	return b.current().Checked()
}

// Name returns the button label.
func (b *Button) Name() string {
	return b.current().Text()
}

// LastEditedTime returns the remote edit time of the last fetched snapshot.
func (b *Button) LastEditedTime() time.Time {
	return b.current().LastEditedTime()
}

// Interval returns the polling period.
func (b *Button) Interval() time.Duration {
	return b.interval
}

func (b *Button) current() *tree.Checkbox {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.baseline
}

// SetPressed writes the checked state to the remote. The confirmed object
// becomes the new baseline, so a programmatic press does not fire Activated
// on this button.
func (b *Button) SetPressed(ctx context.Context, v bool) error {
	if b.Pressed() == v {
		return nil
	}
	return b.write(ctx, map[string]any{"checked": v})
}

// SetName renames the button remotely.
func (b *Button) SetName(ctx context.Context, v string) error {
	return b.write(ctx, map[string]any{"text": v})
}

func (b *Button) write(ctx context.Context, patch map[string]any) error {
	b.tick.Lock()
	defer b.tick.Unlock()

	next, err := cloneCheckbox(b.current())
	if err != nil {
		return err
	}
	if err := next.Update(patch); err != nil {
		return err
	}
	if err := next.Flush(ctx, b.transport, b.logger); err != nil {
		return err
	}
	b.mu.Lock()
	b.baseline = next
	b.mu.Unlock()
	return nil
}

// On registers a handler for ev. Handlers run in registration order.
func (b *Button) On(ev Event, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[ev] = append(b.handlers[ev], h)
}

// Subscribe starts polling in a new goroutine. Polling stops when ctx is
// cancelled or Unsubscribe is called.
func (b *Button) Subscribe(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return ErrSubscribed
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.stopped = false
	b.done = make(chan struct{})
	done := b.done
	b.mu.Unlock()

	b.logger.WithField("interval", b.interval.String()).Debug("Subscribed")
	go b.loop(ctx, done)
	return nil
}

// Unsubscribe stops polling. No tick starts after it returns; a tick already
// running completes without emitting further events. It does not wait for
// the polling goroutine, so it is safe to call from a Handler.
func (b *Button) Unsubscribe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
		b.logger.Debug("Unsubscribed")
	}
}

// Done returns a channel closed when the polling goroutine has exited.
func (b *Button) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return b.done
}

func (b *Button) isStopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}

func (b *Button) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil || b.isStopped() {
			return
		}
		// Errors are logged by Poll; the next tick retries.
		_, _ = b.Poll(ctx)
	}
}

// Poll runs one tick: refetch, diff against the baseline, adopt the snapshot
// and emit at most one event. It returns the emitted event, or "" when none.
// Handlers run after the refetch lock is released, so they may call
// SetPressed or SetName. After Activated the reset write completes before
// Poll returns and before any other tick refetches.
func (b *Button) Poll(ctx context.Context) (Event, error) {
	if err := b.lockTick(ctx); err != nil {
		return "", err
	}
	ev, err := b.refresh(ctx)
	var resetDone chan struct{}
	if ev == Activated {
		resetDone = make(chan struct{})
		b.mu.Lock()
		b.resetting = resetDone
		b.mu.Unlock()
	}
	b.tick.Unlock()

	if ev == "" {
		return "", err
	}
	b.emit(ctx, ev)
	if ev != Activated {
		return ev, nil
	}

	defer func() {
		b.mu.Lock()
		b.resetting = nil
		b.mu.Unlock()
		close(resetDone)
	}()
	return ev, b.reset(ctx)
}

// lockTick acquires the tick lock once no reset write is pending.
func (b *Button) lockTick(ctx context.Context) error {
	for {
		b.tick.Lock()
		b.mu.Lock()
		pending := b.resetting
		b.mu.Unlock()
		if pending == nil {
			return nil
		}
		b.tick.Unlock()
		select {
		case <-pending:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// refresh fetches a snapshot, diffs it against the baseline and adopts it.
// It is called with the tick lock held.
func (b *Button) refresh(ctx context.Context) (Event, error) {
	old := b.current()
	props, err := old.FetchProperties(ctx, b.transport)
	if err != nil {
		b.logger.WithError(err).Error("Error while refreshing button")
		return "", err
	}
	node, err := tree.Wrap(tree.KindCheckbox, props)
	if err != nil {
		b.logger.WithError(err).WithField("object", props).Error("Error while creating checkbox")
		return "", err
	}
	snapshot := node.(*tree.Checkbox)

	d := diff(stateOf(old), stateOf(snapshot))
	switch {
	case !d.any():
		return "", nil
	case !d.edited, !d.checked:
		b.adopt(snapshot)
		return "", nil
	case snapshot.Checked():
		b.adopt(snapshot)
		return Activated, nil
	default:
		b.adopt(snapshot)
		return Deactivated, nil
	}
}

func (b *Button) adopt(snapshot *tree.Checkbox) {
	b.mu.Lock()
	b.baseline = snapshot
	b.mu.Unlock()
}

// reset unticks the remote checkbox. The write goes through a clone of the
// baseline, which keeps the ticked state so the next tick reports
// Deactivated. Changes made by handlers are part of the baseline and are not
// overwritten. Nothing is written when a handler already unticked it.
func (b *Button) reset(ctx context.Context) error {
	b.tick.Lock()
	defer b.tick.Unlock()

	current := b.current()
	if !current.Checked() {
		return nil
	}
	clone, err := cloneCheckbox(current)
	if err != nil {
		return err
	}
	clone.SetChecked(false)
	// The tick is finished even if a handler unsubscribed meanwhile.
	ctx = context.WithoutCancel(ctx)
	if err := clone.Flush(ctx, b.transport, b.logger); err != nil {
		return fmt.Errorf("reset button %s: %w", current.ID(), err)
	}
	return nil
}

func (b *Button) emit(ctx context.Context, ev Event) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	handlers := append([]Handler(nil), b.handlers[ev]...)
	name := b.baseline.Text()
	b.mu.Unlock()

	b.logger.WithField("button", name).Debugf("Sending %s", ev)
	for _, h := range handlers {
		if b.isStopped() {
			return
		}
		h(ctx, b)
	}
}

func cloneCheckbox(c *tree.Checkbox) (*tree.Checkbox, error) {
	cb, ok := tree.Clone(c).(*tree.Checkbox)
	if !ok {
		return nil, fmt.Errorf("button %s is not a checkbox", c.ID())
	}
	return cb, nil
}
