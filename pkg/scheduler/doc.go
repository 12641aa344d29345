// Package scheduler provides a small interval-based job scheduler for
// background maintenance work (cache sweeps, expiry eviction).
//
// The scheduler is an explicitly constructed, injectable service rather than
// process-global state: components that need periodic work receive a
// *Scheduler and register named jobs on it, and the owner controls the
// lifecycle.
//
//	s := scheduler.New(scheduler.WithLogger(log))
//	_ = s.AddJob("cache.evict", time.Minute, func(ctx context.Context) {
//	    mgr.EvictExpired(ctx)
//	})
//
//	go s.Start(ctx) // blocks until ctx is cancelled
//	defer s.Stop()  // graceful shutdown with timeout
//
// Jobs run on their own goroutine and tick independently. A job handle is
// retained under its name so it can be stopped individually with StopJob,
// which is required when the owning component is disposed before process
// shutdown to avoid dangling timers.
package scheduler
