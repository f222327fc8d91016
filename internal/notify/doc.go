// Package notify turns failures into transient, dismissible notifications.
//
// The primary components are:
//   - Kind and Classify: the error taxonomy shown to users
//   - Notification: one message with an expiry
//   - Center: holds active notifications and fans new ones out to handlers
package notify
