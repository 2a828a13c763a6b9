// Package health provides liveness and readiness checks.
//
// Liveness (/health) only reports that the process is up. Readiness
// (/ready) runs every registered check concurrently, each bounded by a
// timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("evaluator", true, svc.SelfTest)
//	checker.RegisterCheck("journal", false, store.Ping)
//
// A failing critical check makes the service unavailable (503). A failing
// non-critical check reports "degraded" but keeps serving.
package health
