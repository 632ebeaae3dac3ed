package testing

import (
	"fmt"
	"math/rand"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// LatencyReport summarizes the measured latency distribution of one operation
type LatencyReport struct {
	Op    string
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

func (r LatencyReport) String() string {
	return fmt.Sprintf("%-8s count=%-8d mean=%-12s p50=%-12s p95=%-12s p99=%-12s max=%s",
		r.Op, r.Count, r.Mean, r.P50, r.P95, r.P99, r.Max)
}

// RunLatencyProfile measures per-operation latency distributions of a fresh
// map instance using go-metrics timers. The map is prefilled with prefill
// random entries, then ops operations of each kind are timed one by one.
//
// This complements the throughput numbers from RunTreeMapBenchmarks: a
// single slow rebalance or a long page walk shows up in the tail
// percentiles, not in ns/op averages.
func RunLatencyProfile(factory TreeFactory, prefill, ops int) []LatencyReport {
	m := factory()
	registry := gometrics.NewRegistry()

	rng := rand.New(rand.NewSource(1))
	keySpace := int64(prefill) + 1

	for i := 0; i < prefill; i++ {
		m.Set(rng.Int63n(keySpace), rng.Int63())
	}

	setTimer := gometrics.GetOrRegisterTimer("set", registry)
	getTimer := gometrics.GetOrRegisterTimer("get", registry)
	deleteTimer := gometrics.GetOrRegisterTimer("delete", registry)
	pageTimer := gometrics.GetOrRegisterTimer("max", registry)

	for i := 0; i < ops; i++ {
		k := rng.Int63n(keySpace)

		setTimer.Time(func() { m.Set(k, k) })
		getTimer.Time(func() { m.Get(k) })
		pageTimer.Time(func() { _, _ = m.Max(int(k%128), 10) })
		deleteTimer.Time(func() { m.Delete(k) })
	}

	reports := make([]LatencyReport, 0, 4)
	for _, name := range []string{"set", "get", "max", "delete"} {
		timer := gometrics.GetOrRegisterTimer(name, registry).Snapshot()
		reports = append(reports, LatencyReport{
			Op:    name,
			Count: timer.Count(),
			Mean:  time.Duration(int64(timer.Mean())),
			P50:   time.Duration(int64(timer.Percentile(0.5))),
			P95:   time.Duration(int64(timer.Percentile(0.95))),
			P99:   time.Duration(int64(timer.Percentile(0.99))),
			Max:   time.Duration(timer.Max()),
		})
	}
	return reports
}
