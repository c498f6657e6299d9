package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"prime-pool/internal/metrics"
	"prime-pool/internal/prime"
	"prime-pool/internal/queue"
	"prime-pool/internal/sink"
)

// recordingClaimer remembers every item it hands out.
type recordingClaimer struct {
	inner   queue.Claimer
	claimed []int
}

func (r *recordingClaimer) Next() (int, bool) {
	n, ok := r.inner.Next()
	if ok {
		r.claimed = append(r.claimed, n)
	}
	return n, ok
}

type failingSink struct {
	calls atomic.Int32
}

func (f *failingSink) Record(int, int) error {
	f.calls.Add(1)
	return errors.New("output closed")
}

type countingRecorder struct {
	claimed, primes, evaluations, started, finished atomic.Int32
}

func (c *countingRecorder) IncClaimed()                     { c.claimed.Add(1) }
func (c *countingRecorder) IncPrimes()                      { c.primes.Add(1) }
func (c *countingRecorder) ObserveEvaluation(time.Duration) { c.evaluations.Add(1) }
func (c *countingRecorder) WorkerStarted()                  { c.started.Add(1) }
func (c *countingRecorder) WorkerFinished()                 { c.finished.Add(1) }

func TestNewWorker(t *testing.T) {
	d := queue.NewMonitor(0)
	w := New(3, d.Claimer(3), sink.NewCollector(4))

	if w.ID() != 3 {
		t.Errorf("expected id 3, got %d", w.ID())
	}
	if w.Stats() != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", w.Stats())
	}
}

func TestWorkerRunCollect(t *testing.T) {
	d := queue.NewMonitor(100)
	c := sink.NewCollector(1)
	w := New(0, d.Claimer(0), c)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	d.AwaitExhaustion()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not terminate")
	}

	if !slices.Equal(c.Buffers()[0], prime.Sequential(100)) {
		t.Errorf("unexpected primes: %v", c.Buffers()[0])
	}
	stats := w.Stats()
	if stats.Claimed != 100 {
		t.Errorf("expected 100 claimed, got %d", stats.Claimed)
	}
	if stats.Found != 25 {
		t.Errorf("expected 25 found, got %d", stats.Found)
	}
}

func TestWorkerPoolEachItemOnce(t *testing.T) {
	const workers = 8
	const maxNumber = 5000

	d := queue.NewMonitor(maxNumber)
	c := sink.NewCollector(workers)

	claimers := make([]*recordingClaimer, workers)
	var wg sync.WaitGroup
	for id := range workers {
		claimers[id] = &recordingClaimer{inner: d.Claimer(id)}
		w := New(id, claimers[id], c)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(context.Background()); err != nil {
				t.Errorf("worker %d: %v", id, err)
			}
		}()
	}

	d.AwaitExhaustion()
	wg.Wait()

	var all []int
	for id, rc := range claimers {
		if !slices.IsSorted(rc.claimed) {
			t.Errorf("worker %d claimed out of order", id)
		}
		if !slices.IsSorted(c.Buffers()[id]) {
			t.Errorf("worker %d buffer not ascending", id)
		}
		all = append(all, rc.claimed...)
	}
	slices.Sort(all)

	if len(all) != maxNumber {
		t.Fatalf("expected %d claims, got %d", maxNumber, len(all))
	}
	for i, n := range all {
		if n != i+1 {
			t.Fatalf("item %d missing or duplicated (got %d at position %d)", i+1, n, i)
		}
	}
	if !slices.Equal(c.Merged(), prime.Sequential(maxNumber)) {
		t.Error("merged primes differ from sequential result")
	}
}

func TestWorkerSinkFailure(t *testing.T) {
	d := queue.NewRangePartition(1, 10)
	s := &failingSink{}
	w := New(0, d.Claimer(0), s)

	err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if s.calls.Load() != 1 {
		t.Errorf("expected worker to stop after first failure, got %d calls", s.calls.Load())
	}
	// 1 is not prime, 2 is: the worker stops on the first record
	if w.Stats().Claimed != 2 {
		t.Errorf("expected 2 claimed before failure, got %d", w.Stats().Claimed)
	}
}

func TestWorkerRecorder(t *testing.T) {
	d := queue.NewRangePartition(1, 30)
	r := &countingRecorder{}
	w := New(0, d.Claimer(0), sink.NewCollector(1), WithRecorder(r), WithTracer(noop.NewTracerProvider().Tracer("test")))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.claimed.Load() != 30 || r.evaluations.Load() != 30 {
		t.Errorf("expected 30 claims and evaluations, got %d/%d", r.claimed.Load(), r.evaluations.Load())
	}
	if r.primes.Load() != 10 {
		t.Errorf("expected 10 primes, got %d", r.primes.Load())
	}
	if r.started.Load() != 1 || r.finished.Load() != 1 {
		t.Errorf("expected balanced start/finish, got %d/%d", r.started.Load(), r.finished.Load())
	}
}

func TestWorkerWithMetrics(t *testing.T) {
	m := metrics.New("test")
	d := queue.NewRangePartition(1, 1000)
	w := New(0, d.Claimer(0), sink.NewCollector(1), WithRecorder(m))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := m.Snapshot()
	if snap.ItemsClaimed != 1000 {
		t.Errorf("expected 1000 claimed, got %d", snap.ItemsClaimed)
	}
	if snap.PrimesFound != 168 {
		t.Errorf("expected 168 primes, got %d", snap.PrimesFound)
	}
}

func TestWorkerNilOptionsKeepDefaults(t *testing.T) {
	d := queue.NewRangePartition(1, 5)
	w := New(0, d.Claimer(0), sink.NewCollector(1), WithRecorder(nil), WithTracer(nil))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
