// Package domain contains the core entities of Memoria: flashcards, study sets,
// users and the session that scopes every remote operation to one owner. It is
// independent of any storage backend or transport.
package domain
