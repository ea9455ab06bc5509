// Package memory provides in-memory repositories for every aggregate.
// They back unit tests and the single-process mode of the admission
// binary. Aggregates are cloned on the way in and on the way out so a
// caller never mutates the stored state.
package memory
