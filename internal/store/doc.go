// Package store defines the persistence contracts of Memoria: the remote
// study-set/card store every study session talks to and the account store used
// for sign-in. Implementations live in internal/platform/postgres and
// internal/store/memory; callers depend only on these interfaces.
package store
