// Package coordinator runs one complete prime search.
//
// Engine.Run seeds the distributor with 1..MaxNumber, spawns exactly
// Workers workers in an errgroup, performs the exhaustion handshake once,
// joins every worker without a timeout and then prints or merges the
// results:
//
//	engine := coordinator.New(coordinator.Config{
//	    Workers:   8,
//	    MaxNumber: 100000,
//	    Strategy:  queue.StrategySharedQueue,
//	    Mode:      sink.ModeCollect,
//	    Output:    os.Stdout,
//	})
//	result, err := engine.Run(ctx)
//
// The output bracket is a banner line, "Start Time: ...", the prime lines
// and "End Time: ...". Timestamps use YYYY-MM-DD HH:MM:SS.mmm.
//
// # Failure
//
// The first worker error aborts the distributor, which releases every
// parked worker and the coordinator itself; Run then returns that error.
// There is no retry and no partial result.
//
// # Cancellation
//
// The context carries tracing only. A run always proceeds to natural
// exhaustion.
package coordinator
