// Package aggregates defines domain-facing aggregate contracts.
//
// These contracts avoid persistence details and mark the write boundaries
// where the place/owner invariants must hold atomically.
package aggregates
