// Package mocks provides hand-written test doubles for the store
// interfaces. Each mock offers map-backed default behavior plus
// per-method function fields for overriding specific calls.
package mocks
