package concurrency

import "sync/atomic"

// OperationCounters tracks governed-operation statistics. Safe for concurrent
// use from any number of goroutines.
type OperationCounters struct {
	Executed   atomic.Int64
	Duplicates atomic.Int64
	Failed     atomic.Int64
	Contended  atomic.Int64
}

// CounterSnapshot is a point-in-time copy of the counters.
type CounterSnapshot struct {
	Executed   int64 `json:"executed"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
	Contended  int64 `json:"contended"`
}

// Snapshot returns a copy of the current counter values.
func (c *OperationCounters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Executed:   c.Executed.Load(),
		Duplicates: c.Duplicates.Load(),
		Failed:     c.Failed.Load(),
		Contended:  c.Contended.Load(),
	}
}
