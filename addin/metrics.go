/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package addin

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksScheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_idle_tasks_scheduled_total",
		Help: "Total number of tasks submitted to the idle scheduler.",
	})
	tasksExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_idle_tasks_executed_total",
		Help: "Total number of task actions executed by the idle scheduler.",
	})
	tasksFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_idle_tasks_failed_total",
		Help: "Total number of task actions that returned an error or panicked.",
	})
	activeSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "addin_active_subscriptions",
		Help: "Number of host event kinds with an active handler.",
	})
	crashSequences = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_crash_sequences_total",
		Help: "Total number of crash recovery sequences executed.",
	})
	markerDeletes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_marker_deletes_total",
		Help: "Total number of marker resources deleted.",
	})
	markerDeleteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "addin_marker_delete_failures_total",
		Help: "Total number of marker cleanup attempts that failed.",
	})
)

func init() {
	prometheus.MustRegister(
		tasksScheduled,
		tasksExecuted,
		tasksFailed,
		activeSubscriptions,
		crashSequences,
		markerDeletes,
		markerDeleteFailures,
	)
}
