// Package queue distributes work items (the integers 1..max) to a fixed set
// of workers.
//
// Three strategies implement the Distributor interface:
//
//   - Monitor: a FIFO slice guarded by one mutex and one condition variable,
//     with a monotonic termination flag. This is the canonical strategy.
//   - ChannelQueue: a pre-filled buffered channel that is closed up front;
//     the close replaces the flag-and-broadcast handshake.
//   - RangePartition: a static split of 1..max into contiguous batches, one
//     per worker, computed once and never synchronized.
//
// # Exhaustion Handshake
//
// For the Monitor, the worker whose removal empties the queue broadcasts,
// but never sets the termination flag. Only the coordinator sets it, from
// AwaitExhaustion, after it has re-confirmed emptiness under the lock. It
// then broadcasts again so that every parked worker re-checks the flag and
// exits:
//
//	d := queue.NewMonitor(max)
//	for id := range workers {
//	    go consume(d.Claimer(id))
//	}
//	d.AwaitExhaustion() // empty -> flag -> broadcast
//
// # Thread Safety
//
// Claimers returned by a Distributor may be used from different goroutines,
// one goroutine per claimer.
package queue
