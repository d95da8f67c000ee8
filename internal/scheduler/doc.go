// Package scheduler runs leaf translation tasks on a bounded worker pool.
//
// A Scheduler owns exactly MaxWorkers goroutines for the duration of Run.
// Each worker resolves a task from the run's cache or, on a miss, through
// the retry controller around the provider. Task failures are recorded in
// the task's Result and never stop the other tasks.
package scheduler
