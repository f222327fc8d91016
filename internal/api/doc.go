// Package api contains the HTTP handlers of the generation backend: account
// registration and login, and the upload-generate endpoint that turns a
// document into flashcards. It translates between HTTP and the auth and
// generation services and never exposes internal error text to clients.
package api
