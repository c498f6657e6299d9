// Package metrics collects worker-pool statistics.
//
// Metrics exposes Prometheus collectors (items claimed, primes found, active
// workers, per-item evaluation time, run duration) registered on a private
// registry, and keeps atomic totals for a cheap in-process Snapshot.
//
// # Basic Usage
//
//	m := metrics.New("primepool")
//
//	m.WorkerStarted()
//	defer m.WorkerFinished()
//
//	start := time.Now()
//	m.IncClaimed()
//	if prime.IsPrime(n) {
//	    m.IncPrimes()
//	}
//	m.ObserveEvaluation(time.Since(start))
//
//	snap := m.Snapshot()
//
// # Exposition
//
// Serve publishes /metrics on the given address until its context ends:
//
//	go m.Serve(ctx, ":9090")
//
// # Thread Safety
//
// All recording methods are safe for concurrent use.
package metrics
