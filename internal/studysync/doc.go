// Package studysync keeps the active study set's local card list consistent
// with the remote store.
//
// A Controller owns the active set and its cards. Every change goes through
// it, either by calling its methods or by dispatching a Command:
//
//   - card adds, edits and deletes are validated before any remote call and
//     applied locally only after the store confirms them
//   - mutations of one card are written in the order they were issued
//   - a result that arrives after the active set was replaced or cleared is
//     discarded
//
// The creation flows (generate, import, empty set) persist a set together
// with its first cards and then make it active.
package studysync
