// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package query

import (
	"github.com/prometheus/client_golang/prometheus"

	metricsutil "github.com/ebay/katmai/util/metrics"
)

var metrics engineMetrics

type engineMetrics struct {
	queries          prometheus.Counter
	queryFailures    prometheus.Counter
	queryDuration    prometheus.Summary
	compileDuration  prometheus.Summary
	executorsPerPlan prometheus.Summary
}

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}

	metrics = engineMetrics{
		queries: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "katmai",
			Subsystem: "query",
			Name:      "executions_total",
			Help:      "The number of plans handed to the execution engine.",
		}),
		queryFailures: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "katmai",
			Subsystem: "query",
			Name:      "execution_failures_total",
			Help:      "The number of plan executions that settled with an error.",
		}),
		queryDuration: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "katmai",
			Subsystem:  "query",
			Name:       "execution_duration_seconds",
			Help:       "How long plan executions took, end to end.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     prometheus.DefMaxAge,
			AgeBuckets: prometheus.DefAgeBuckets,
		}),
		compileDuration: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "katmai",
			Subsystem:  "query",
			Name:       "compile_duration_seconds",
			Help:       "How long compiling plans to executor graphs took.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     prometheus.DefMaxAge,
			AgeBuckets: prometheus.DefAgeBuckets,
		}),
		executorsPerPlan: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "katmai",
			Subsystem:  "query",
			Name:       "executors_per_plan",
			Help:       "How many executors plans compiled to.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			MaxAge:     prometheus.DefMaxAge,
			AgeBuckets: prometheus.DefAgeBuckets,
		}),
	}
}
