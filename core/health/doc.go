// Package health provides liveness and readiness handlers.
//
// Liveness always answers 200 "ALIVE". Readiness runs dependency checks, such
// as mail.Healthcheck for the configured transport, and answers 503 when one
// of them fails.
package health
