// Package testutil provides test utilities for the projector, including:
//   - an in-memory variables.Reader with fixture builders (fixtures.go)
//   - Miniredis helpers for cache tests (miniredis.go)
//
// None of the helpers need Docker or a network, so they work with regular tests.
package testutil
