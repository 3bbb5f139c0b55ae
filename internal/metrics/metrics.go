/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package metrics defines Prometheus metrics for the authentication core.
//
// Metric naming follows Prometheus conventions:
//   - platewise_ prefix for all custom metrics
//   - _total suffix for counters
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Login attempt results.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultLocked  = "locked"
	ResultError   = "error"
)

var (
	// LoginAttemptsTotal counts login attempts by terminal result.
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_login_attempts_total",
			Help: "Total number of login attempts by result.",
		},
		[]string{"result"},
	)

	// SessionRefreshesTotal counts per-request session refreshes by result.
	SessionRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_session_refreshes_total",
			Help: "Total number of session refresh attempts by result.",
		},
		[]string{"result"},
	)

	// SessionsSweptTotal counts sessions removed by the background sweeper.
	SessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_sessions_swept_total",
			Help: "Total number of expired sessions removed by the sweeper.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		SessionRefreshesTotal,
		SessionsSweptTotal,
	)
}
