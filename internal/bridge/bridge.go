package bridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ytget/fluxnet/internal/logging"
	"github.com/ytget/fluxnet/internal/model"
)

// Mutation sets one display target to a value.
// Value types: string for Download/Upload/Ping/Status, model.ButtonState for
// Button, model.ProgressSignal for Progress.
type Mutation struct {
	Target model.Target
	Value  any

	barrier chan struct{}
}

// Applier applies mutations on the UI thread
type Applier interface {
	Apply(m Mutation)
}

// ApplierFunc adapts a function to Applier
type ApplierFunc func(m Mutation)

// Apply calls f(m)
func (f ApplierFunc) Apply(m Mutation) { f(m) }

// Dispatcher runs fn on the UI thread. It may return before or after fn ran,
// but must run functions in the order it receives them.
type Dispatcher func(fn func())

// Direct runs fn on the calling goroutine. Use it for UIs without a main loop.
func Direct(fn func()) { fn() }

// Poster is the producer side of the bridge
type Poster interface {
	Post(target model.Target, value any)
}

// Observer is notified about the fate of every mutation
type Observer interface {
	RecordMutation()
	RecordDropped()
}

// Option configures a Bridge
type Option func(*Bridge)

// WithObserver attaches an observer, typically the metrics recorder
func WithObserver(o Observer) Option {
	return func(b *Bridge) { b.observer = o }
}

// Bridge is an unbounded FIFO of mutations with an owning consumer goroutine
type Bridge struct {
	applier  Applier
	dispatch Dispatcher
	observer Observer
	logger   *zap.Logger

	mu     sync.Mutex
	queue  []Mutation
	closed bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

// New creates a bridge and starts its consumer loop
func New(applier Applier, dispatch Dispatcher, opts ...Option) *Bridge {
	b := &Bridge{
		applier:  applier,
		dispatch: dispatch,
		logger:   logging.Named("bridge"),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.loop()
	return b
}

// Post queues a mutation. It never blocks; after Close the mutation is dropped.
func (b *Bridge) Post(target model.Target, value any) {
	b.enqueue(Mutation{Target: target, Value: value})
}

// PostText posts a text value for a label target
func PostText(p Poster, target model.Target, text string) {
	p.Post(target, text)
}

// PostButton posts a new state for the start button
func PostButton(p Poster, enabled bool, label string) {
	p.Post(model.TargetButton, model.ButtonState{Enabled: enabled, Label: label})
}

// PostProgress posts a progress indicator signal
func PostProgress(p Poster, signal model.ProgressSignal) {
	p.Post(model.TargetProgress, signal)
}

// Sync blocks until every mutation posted before the call has been applied or
// dropped. It must not be called from the UI thread.
func (b *Bridge) Sync() {
	barrier := make(chan struct{})
	if !b.enqueue(Mutation{barrier: barrier}) {
		return
	}
	select {
	case <-barrier:
	case <-b.done:
	}
}

// Close stops the consumer. Queued and later mutations are dropped silently.
// Close does not wait for the consumer and is safe to call from the UI thread.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
	})
}

func (b *Bridge) enqueue(m Mutation) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.drop(m)
		return false
	}
	b.queue = append(b.queue, m)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
	return true
}

func (b *Bridge) loop() {
	for {
		select {
		case <-b.wake:
		case <-b.done:
			b.dropPending()
			return
		}

		batch := b.take()
		if len(batch) == 0 {
			continue
		}
		b.dispatch(func() { b.apply(batch) })
	}
}

func (b *Bridge) take() []Mutation {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.queue
	b.queue = nil
	return batch
}

// apply runs on the UI thread
func (b *Bridge) apply(batch []Mutation) {
	for _, m := range batch {
		if m.barrier != nil {
			close(m.barrier)
			continue
		}
		if b.isClosed() {
			b.drop(m)
			continue
		}
		b.applier.Apply(m)
		if b.observer != nil {
			b.observer.RecordMutation()
		}
	}
}

func (b *Bridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Bridge) dropPending() {
	for _, m := range b.take() {
		b.drop(m)
	}
}

func (b *Bridge) drop(m Mutation) {
	if m.barrier != nil {
		close(m.barrier)
		return
	}
	b.logger.Debug("mutation dropped after close", zap.Stringer("target", m.Target))
	if b.observer != nil {
		b.observer.RecordDropped()
	}
}
