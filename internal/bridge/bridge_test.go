package bridge

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/fluxnet/internal/model"
)

// uiLoop emulates a single-threaded event loop fed by a dispatcher
type uiLoop struct {
	work chan func()
	stop chan struct{}
}

func newUILoop() *uiLoop {
	l := &uiLoop{work: make(chan func(), 16), stop: make(chan struct{})}
	go func() {
		for {
			select {
			case fn := <-l.work:
				fn()
			case <-l.stop:
				return
			}
		}
	}()
	return l
}

func (l *uiLoop) dispatch(fn func()) {
	done := make(chan struct{})
	l.work <- func() {
		fn()
		close(done)
	}
	<-done
}

func TestPost_AppliesInOrder(t *testing.T) {
	rec := &recorder{}
	loop := newUILoop()
	defer close(loop.stop)
	b := New(rec, loop.dispatch)
	defer b.Close()

	for i := 0; i < 500; i++ {
		PostText(b, model.TargetDownload, fmt.Sprintf("%d", i))
	}
	b.Sync()

	values := rec.values(model.TargetDownload)
	require.Len(t, values, 500)
	for i, v := range values {
		assert.Equal(t, fmt.Sprintf("%d", i), v)
	}
	assert.False(t, rec.overlap)
}

func TestPost_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	rec := &recorder{}
	b := New(rec, Direct)
	defer b.Close()

	var wg sync.WaitGroup
	targets := []model.Target{model.TargetDownload, model.TargetUpload, model.TargetPing}
	for _, target := range targets {
		wg.Add(1)
		go func(target model.Target) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				PostText(b, target, fmt.Sprintf("%d", i))
			}
		}(target)
	}
	wg.Wait()
	b.Sync()

	for _, target := range targets {
		values := rec.values(target)
		require.Len(t, values, 200, "target %s", target)
		for i, v := range values {
			assert.Equal(t, fmt.Sprintf("%d", i), v)
		}
	}
}

func TestPost_NeverBlocksWhileUIBusy(t *testing.T) {
	rec := &recorder{}
	release := make(chan struct{})
	blocked := func(fn func()) {
		<-release
		fn()
	}
	b := New(rec, blocked)
	defer b.Close()

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			PostText(b, model.TargetStatus, "x")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Post blocked while the UI was busy")
	}

	close(release)
	b.Sync()
	assert.Len(t, rec.values(model.TargetStatus), 10_000)
}

func TestClose_DropsLaterMutations(t *testing.T) {
	rec := &recorder{}
	obs := &countingObserver{}
	b := New(rec, Direct, WithObserver(obs))

	PostText(b, model.TargetPing, "1.00")
	b.Sync()
	b.Close()
	b.Close() // idempotent

	assert.NotPanics(t, func() {
		PostText(b, model.TargetPing, "2.00")
		PostButton(b, true, "Start")
		b.Sync()
	})

	assert.Equal(t, []any{"1.00"}, rec.values(model.TargetPing))
	assert.Empty(t, rec.values(model.TargetButton))
	applied, dropped := obs.counts()
	assert.Equal(t, 1, applied)
	assert.Equal(t, 2, dropped)

	select {
	case <-b.done:
	default:
		t.Fatal("done should be closed")
	}
}

func TestClose_DropsQueuedMutations(t *testing.T) {
	rec := &recorder{}
	release := make(chan struct{})
	var b *Bridge
	b = New(rec, func(fn func()) {
		<-release
		fn()
	})

	PostText(b, model.TargetStatus, "first")
	PostText(b, model.TargetStatus, "second")
	b.Close()
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.values(model.TargetStatus), "nothing is applied once the UI is torn down")
}

func TestTypedHelpers(t *testing.T) {
	var got []Mutation
	p := posterFunc(func(target model.Target, v any) {
		got = append(got, Mutation{Target: target, Value: v})
	})

	PostButton(p, false, "Testing...")
	PostProgress(p, model.ProgressStart)
	PostText(p, model.TargetStatus, "Finding best server...")

	require.Len(t, got, 3)
	assert.Equal(t, Mutation{Target: model.TargetButton, Value: model.ButtonState{Enabled: false, Label: "Testing..."}}, got[0])
	assert.Equal(t, Mutation{Target: model.TargetProgress, Value: model.ProgressStart}, got[1])
	assert.Equal(t, Mutation{Target: model.TargetStatus, Value: "Finding best server..."}, got[2])
}

func TestApplierFunc(t *testing.T) {
	var got Mutation
	ApplierFunc(func(m Mutation) { got = m }).Apply(Mutation{Target: model.TargetStatus, Value: "ok"})
	assert.Equal(t, "ok", got.Value)
}
