// Package worker implements the loop each pool member runs.
//
// A Worker repeatedly claims one item from its queue.Claimer, releases any
// distributor lock before evaluating prime.IsPrime on it, and records primes
// to a sink.Sink. It returns when the distributor reports that distribution
// has finished.
//
// # Basic Usage
//
//	d := queue.NewMonitor(1000)
//	s := sink.NewCollector(4)
//
//	w := worker.New(0, d.Claimer(0), s, worker.WithRecorder(m))
//	if err := w.Run(ctx); err != nil {
//	    // a sink failure; fatal to the whole run
//	}
//
// # Failure
//
// A sink error ends the loop and is returned wrapped with the worker ID. The
// caller is expected to abort the distributor so the remaining workers
// stop as well; Run never retries.
//
// # Ownership
//
// Stats are written only by the goroutine running Run and must be read
// after it returns.
package worker
