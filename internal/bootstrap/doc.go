// Package bootstrap implements the one-shot environment bootstrap that runs
// on shell activation: it creates the project-local kernel registry, drives
// the external kernel installer, relocates the resulting registration out of
// the per-user global registry, and exports the kernel search path.
//
// The procedure is strictly sequential and best-effort: a failed step aborts
// the rest with no rollback, leaving the session partially bootstrapped.
// Concurrent activations of the same session root race on both registries;
// the single-interactive-user model accepts that race.
package bootstrap
