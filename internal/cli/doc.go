// Package cli implements the memoria command line client.
//
// Commands are built with cobra on top of an App, which owns the study set
// store, the generation client, the login session file and the notification
// center. Every failure is published to the notification center, which prints
// it to standard error, so callers only need to print errors for which
// IsReported is false.
//
// The shell command runs commands one per line against the same App, so the
// active study set survives between them.
package cli
