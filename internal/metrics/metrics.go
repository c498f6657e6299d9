package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace はメトリクス名の接頭辞
const DefaultNamespace = "primepool"

// Metrics はワーカープールのメトリクスを収集する
type Metrics struct {
	registry *prometheus.Registry

	ItemsClaimed   prometheus.Counter
	PrimesFound    prometheus.Counter
	ActiveWorkers  prometheus.Gauge
	EvaluationTime prometheus.Histogram
	RunDuration    prometheus.Histogram

	claimed         atomic.Uint64
	primes          atomic.Uint64
	totalEvaluateNs atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
}

// New は専用のレジストリに登録されたメトリクスを作成する
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ItemsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_claimed_total",
			Help:      "Total number of work items claimed by workers",
		}),
		PrimesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "primes_found_total",
			Help:      "Total number of primes discovered",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Number of workers currently running",
		}),
		EvaluationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_seconds",
			Help:      "Time spent evaluating a single work item",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete runs",
			Buckets:   prometheus.DefBuckets,
		}),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.ItemsClaimed,
		m.PrimesFound,
		m.ActiveWorkers,
		m.EvaluationTime,
		m.RunDuration,
	)
	return m
}

// Registry はメトリクスのレジストリを返す
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncClaimed は取得した項目を記録する
func (m *Metrics) IncClaimed() {
	m.claimed.Add(1)
	m.ItemsClaimed.Inc()
}

// IncPrimes は発見した素数を記録する
func (m *Metrics) IncPrimes() {
	m.primes.Add(1)
	m.PrimesFound.Inc()
}

// ObserveEvaluation は1項目の判定時間を記録する
func (m *Metrics) ObserveEvaluation(d time.Duration) {
	m.totalEvaluateNs.Add(uint64(d.Nanoseconds()))
	m.EvaluationTime.Observe(d.Seconds())
}

// WorkerStarted はワーカーの開始を記録する
func (m *Metrics) WorkerStarted() { m.ActiveWorkers.Inc() }

// WorkerFinished はワーカーの終了を記録する
func (m *Metrics) WorkerFinished() { m.ActiveWorkers.Dec() }

// ObserveRun は1回の実行時間を記録する
func (m *Metrics) ObserveRun(d time.Duration) {
	m.RunDuration.Observe(d.Seconds())
}

// Reset はスナップショット用の集計をリセットする
// Prometheus のカウンタは単調増加のためリセットしない
func (m *Metrics) Reset() {
	m.claimed.Store(0)
	m.primes.Store(0)
	m.totalEvaluateNs.Store(0)

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Snapshot はメトリクスのスナップショット
type Snapshot struct {
	ItemsClaimed      uint64
	PrimesFound       uint64
	ItemsPerSecond    float64
	AverageEvaluation time.Duration
	Elapsed           time.Duration
}

// Snapshot は現在のメトリクスのスナップショットを返す
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	elapsed := time.Since(m.startTime)
	m.mu.RUnlock()

	claimed := m.claimed.Load()
	snap := Snapshot{
		ItemsClaimed: claimed,
		PrimesFound:  m.primes.Load(),
		Elapsed:      elapsed,
	}
	if claimed > 0 {
		snap.AverageEvaluation = time.Duration(m.totalEvaluateNs.Load() / claimed)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.ItemsPerSecond = float64(claimed) / secs
	}
	return snap
}

// Handler は /metrics 用のハンドラを返す
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve は ctx がキャンセルされるまでメトリクスを公開する
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
