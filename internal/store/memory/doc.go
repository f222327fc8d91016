// Package memory provides in-process implementations of the store interfaces.
// They back the client's "memory" storage mode and serve as fakes in tests,
// where a Hook can delay or fail individual operations.
package memory
