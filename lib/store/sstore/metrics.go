package sstore

import (
	"github.com/VictoriaMetrics/metrics"
)

// Operation counters for all sorted store instances in the process. They are
// registered in the default metrics set, an application exposes them by
// serving metrics.WritePrometheus from whatever endpoint it already has.
var (
	metricSet      = metrics.NewCounter(`tkv_store_operations_total{op="set"}`)
	metricUpdate   = metrics.NewCounter(`tkv_store_operations_total{op="update"}`)
	metricDelete   = metrics.NewCounter(`tkv_store_operations_total{op="delete"}`)
	metricClear    = metrics.NewCounter(`tkv_store_operations_total{op="clear"}`)
	metricGet      = metrics.NewCounter(`tkv_store_operations_total{op="get"}`)
	metricSnapshot = metrics.NewCounter(`tkv_store_operations_total{op="snapshot"}`)
	metricPage     = metrics.NewCounter(`tkv_store_operations_total{op="page"}`)
)
