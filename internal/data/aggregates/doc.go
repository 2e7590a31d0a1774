// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// The gorm EntityStore composes table-level repos from internal/data/repos
// behind an explicit transaction handle; Execute wraps that handle with
// commit/rollback discipline, error classification and metrics.
package aggregates
