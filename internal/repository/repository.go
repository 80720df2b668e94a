package repository

import "time"

// OpObserver receives per-operation timings from the repositories. A nil
// observer disables instrumentation.
type OpObserver interface {
	ObserveStoreOp(collection, op string, duration time.Duration)
}

type opTimer struct {
	collection string
	obs        OpObserver
}

func (t opTimer) track(op string) func() {
	if t.obs == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.obs.ObserveStoreOp(t.collection, op, time.Since(start)) }
}
