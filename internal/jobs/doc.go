// Package jobs implements background job processing for the Handy API.
//
// The jobs package contains scheduled tasks that run independently of HTTP
// request handling.
//
// # Job Types
//
// Available background jobs:
//
//   - ReconcilerJob: Periodic membership list reconciliation sweep
//
// # Lifecycle
//
// Jobs expose Start/Stop and are wired in cmd/server:
//
//	job := jobs.NewReconcilerJob(reconciler, 5*time.Minute)
//	job.Start()
//	defer job.Stop()
//
// # Error Handling
//
// Jobs log errors but don't crash the application. A failed sweep is simply
// retried on the next tick.
package jobs
