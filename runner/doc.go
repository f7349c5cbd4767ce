// Package runner executes a discovered spec tree to completion.
//
// It provides:
//   - A blocking scheduler that dispatches top-level units to a bounded
//     worker pool and recurses synchronously below that level
//   - Interceptor chain composition around spec roots and isolated cases
//   - The per-test instancing path (fresh instance, rediscovery, match by
//     case name)
//   - Paired start/finish reporting with per-node failure isolation
package runner
